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

type journalHandler struct {
	journalService *service.JournalService
}

func NewJournalHandler(journalService *service.JournalService) *journalHandler {
	return &journalHandler{journalService: journalService}
}

type createEntryRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	EntryType string   `json:"entry_type"`
	Tags      []string `json:"tags"`
	Mood      *int     `json:"mood"`
}

func (h *journalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createEntryRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.journalService.CreateEntry(user.ID, req.Title, req.Content, req.EntryType, req.Tags, req.Mood)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			api.Error(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, service.ErrContentTooShort),
			errors.Is(err, service.ErrTooManyTags),
			errors.Is(err, service.ErrInvalidMood):
			api.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("entry creation failed", "error", err, "user_id", user.ID)
			api.Error(w, http.StatusInternalServerError, "failed to save entry")
		}
		return
	}

	api.JSON(w, http.StatusCreated, map[string]any{"entry": entry})
}

func (h *journalHandler) Entries(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.journalService.Entries(user.ID, limit)
	if err != nil {
		slog.Error("entry listing failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to list entries")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *journalHandler) Entry(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	entryID := r.PathValue("id")

	entry, err := h.journalService.Entry(user.ID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			api.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		slog.Error("entry lookup failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to load entry")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"entry": entry})
}

type moodCheckinRequest struct {
	Mood int    `json:"mood"`
	Note string `json:"note"`
}

// CheckinMood records today's mood. Checking in twice on the same day
// replaces the earlier value.
func (h *journalHandler) CheckinMood(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req moodCheckinRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	checkin, err := h.journalService.CheckinMood(user.ID, req.Mood, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMood) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("mood check-in failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to save check-in")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"checkin": checkin})
}

func (h *journalHandler) Moods(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	checkins, err := h.journalService.RecentMoods(user.ID, limit)
	if err != nil {
		slog.Error("mood listing failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to list check-ins")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"checkins": checkins})
}
