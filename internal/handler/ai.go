package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/service"
)

type aiHandler struct {
	aiService           *service.AIService
	speechService       *service.SpeechService
	scenarioService     *service.ScenarioService
	subscriptionService *service.SubscriptionService
}

func NewAIHandler(
	aiService *service.AIService,
	speechService *service.SpeechService,
	scenarioService *service.ScenarioService,
	subscriptionService *service.SubscriptionService,
) *aiHandler {
	return &aiHandler{
		aiService:           aiService,
		speechService:       speechService,
		scenarioService:     scenarioService,
		subscriptionService: subscriptionService,
	}
}

// Prompt returns today's journaling prompt. Available on every plan.
func (h *aiHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())

	result, err := h.aiService.DailyPrompt(r.Context(), user.ID, profile)
	if err != nil {
		h.aiError(w, err, user.ID, "prompt")
		return
	}

	api.JSON(w, http.StatusOK, result)
}

// Insights summarizes the last week of journaling. Paid plans only.
func (h *aiHandler) Insights(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if !h.subscriptionService.CanAccessFeature(user.ID, model.FeatureAICoaching) {
		api.Error(w, http.StatusForbidden, service.ErrFeatureNotIncluded.Error())
		return
	}

	result, err := h.aiService.WeeklyInsights(r.Context(), user.ID)
	if err != nil {
		h.aiError(w, err, user.ID, "insights")
		return
	}

	h.subscriptionService.TrackUsage(user.ID, model.UsageFeatureAIInsight)
	api.JSON(w, http.StatusOK, result)
}

type coachingRequest struct {
	Scenario string   `json:"scenario"`
	History  []string `json:"history"`
	Message  string   `json:"message"`
}

// Coaching produces the counterpart's next turn in a practice
// conversation. Requires both the coaching feature and a known scenario.
func (h *aiHandler) Coaching(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if !h.subscriptionService.CanAccessFeature(user.ID, model.FeatureAICoaching) {
		api.Error(w, http.StatusForbidden, service.ErrFeatureNotIncluded.Error())
		return
	}

	var req coachingRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	scenario := h.scenarioService.BySlug(req.Scenario)
	if scenario == nil {
		api.Error(w, http.StatusNotFound, "scenario not found")
		return
	}

	if scenario.Difficulty == model.DifficultyAdvanced &&
		!h.subscriptionService.CanAccessFeature(user.ID, model.FeatureDialogueSimulator) {
		api.Error(w, http.StatusForbidden, service.ErrFeatureNotIncluded.Error())
		return
	}

	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.aiService.Coaching(r.Context(), scenario, req.History, req.Message)
	if err != nil {
		h.aiError(w, err, user.ID, "coaching")
		return
	}

	h.subscriptionService.TrackUsage(user.ID, model.UsageFeatureAICoaching)
	api.JSON(w, http.StatusOK, result)
}

type sentimentRequest struct {
	Content string `json:"content"`
}

func (h *aiHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req sentimentRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	result, err := h.aiService.Sentiment(r.Context(), req.Content)
	if err != nil {
		h.aiError(w, err, user.ID, "sentiment")
		return
	}

	api.JSON(w, http.StatusOK, result)
}

type speechRequest struct {
	Text string `json:"text"`
}

// Speech reads text aloud and returns MP3 audio. Needs the voice
// journaling feature on the caller's plan.
func (h *aiHandler) Speech(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if !h.subscriptionService.CanAccessFeature(user.ID, model.FeatureVoiceJournaling) {
		api.Error(w, http.StatusForbidden, service.ErrFeatureNotIncluded.Error())
		return
	}

	var req speechRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := h.speechService.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.aiError(w, err, user.ID, "speech")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(audio)
	if err != nil {
		slog.Error("speech response write failed", "error", err)
	}
}

func (h *aiHandler) aiError(w http.ResponseWriter, err error, userID, op string) {
	switch {
	case errors.Is(err, service.ErrAINotConfigured):
		api.Error(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrMalformedAIResponse):
		slog.Warn("ai returned malformed response", "op", op, "user_id", userID)
		api.Error(w, http.StatusBadGateway, "the assistant gave an unusable answer, please retry")
	default:
		slog.Error("ai request failed", "op", op, "error", err, "user_id", userID)
		api.Error(w, http.StatusBadGateway, "the assistant is unavailable, please retry")
	}
}
