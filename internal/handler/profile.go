package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/service"
)

type profileHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
}

func NewProfileHandler(authService *service.AuthService, profileService *service.ProfileService) *profileHandler {
	return &profileHandler{
		authService:    authService,
		profileService: profileService,
	}
}

type onboardingRequest struct {
	Name       string   `json:"name"`
	Pronouns   string   `json:"pronouns"`
	FocusAreas []string `json:"focus_areas"`
	Reflection string   `json:"reflection"`
}

// CompleteOnboarding finishes the first-run wizard. Idempotent: running
// it again just overwrites the profile fields.
func (h *profileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req onboardingRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.authService.CompleteOnboarding(user.ID, req.Name, req.Pronouns, req.FocusAreas, req.Reflection)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired),
			errors.Is(err, service.ErrTooManyFocusAreas):
			api.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("onboarding failed", "error", err, "user_id", user.ID)
			api.Error(w, http.StatusInternalServerError, "failed to complete onboarding")
		}
		return
	}

	profile, err := h.profileService.ByUserID(user.ID)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (h *profileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile := ctxkeys.Profile(r.Context())
	api.JSON(w, http.StatusOK, map[string]any{"profile": profile})
}

type profileUpdateRequest struct {
	Name       string   `json:"name"`
	Pronouns   string   `json:"pronouns"`
	FocusAreas []string `json:"focus_areas"`
	Reflection string   `json:"reflection"`
}

func (h *profileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req profileUpdateRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.Update(user.ID, req.Name, req.Pronouns, req.FocusAreas, req.Reflection)
	if err != nil {
		if errors.Is(err, service.ErrTooManyFocusAreas) {
			api.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("profile update failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"profile": profile})
}
