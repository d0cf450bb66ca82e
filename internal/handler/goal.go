package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/service"
)

type goalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *goalHandler {
	return &goalHandler{goalService: goalService}
}

type goalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Cadence     string `json:"cadence"`
	Status      string `json:"status"`
}

func (h *goalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req goalRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.CreateGoal(user.ID, req.Title, req.Description, req.Cadence)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGoalTitleRequired):
			api.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrGoalLimitReached):
			api.Error(w, http.StatusForbidden, err.Error())
		default:
			slog.Error("goal creation failed", "error", err, "user_id", user.ID)
			api.Error(w, http.StatusInternalServerError, "failed to create goal")
		}
		return
	}

	api.JSON(w, http.StatusCreated, map[string]any{"goal": goal})
}

func (h *goalHandler) Goals(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Goals(user.ID)
	if err != nil {
		slog.Error("goal listing failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to list goals")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *goalHandler) Goal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.Goal(user.ID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			api.Error(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("goal lookup failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to load goal")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *goalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var req goalRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.UpdateGoal(user.ID, goalID, req.Title, req.Description, req.Cadence, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			api.Error(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("goal update failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *goalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.DeleteGoal(user.ID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			api.Error(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.Error("goal deletion failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type progressRequest struct {
	Completed bool   `json:"completed"`
	Note      string `json:"note"`
}

// RecordProgress upserts the day's completion record. Calling it twice
// for the same day is a no-op, so an impatient double-tap never double
// counts.
func (h *goalHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")
	day := r.PathValue("day")

	var req progressRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.goalService.RecordProgress(user.ID, goalID, day, req.Completed, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDay):
			api.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrGoalNotFound):
			api.Error(w, http.StatusNotFound, "goal not found")
		default:
			slog.Error("progress recording failed", "error", err, "user_id", user.ID, "goal_id", goalID)
			api.Error(w, http.StatusInternalServerError, "failed to record progress")
		}
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"progress": progress})
}

func (h *goalHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.goalService.Progress(user.ID, goalID, limit)
	if err != nil {
		slog.Error("progress listing failed", "error", err, "user_id", user.ID, "goal_id", goalID)
		api.Error(w, http.StatusInternalServerError, "failed to list progress")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"progress": records})
}
