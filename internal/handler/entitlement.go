package handler

import (
	"log/slog"
	"net/http"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/service"
)

type entitlementHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewEntitlementHandler(subscriptionService *service.SubscriptionService) *entitlementHandler {
	return &entitlementHandler{subscriptionService: subscriptionService}
}

func (h *entitlementHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	subscription := ctxkeys.Subscription(r.Context())

	response := map[string]any{"subscription": subscription}

	tier, err := h.subscriptionService.TierFor(subscription)
	if err != nil {
		slog.Warn("subscription: tier lookup failed", "error", err)
	} else {
		response["tier"] = tier
	}

	api.JSON(w, http.StatusOK, response)
}

// Tiers is public; the pricing page calls it before sign-up.
func (h *entitlementHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.subscriptionService.Tiers()
	if err != nil {
		slog.Error("tier catalog lookup failed", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to load plans")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"tiers": tiers})
}

// Feature answers whether the current plan includes a feature. The gate
// fails closed, so an unknown feature name reads as denied.
func (h *entitlementHandler) Feature(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	feature := r.PathValue("name")

	allowed := h.subscriptionService.CanAccessFeature(user.ID, feature)

	api.JSON(w, http.StatusOK, map[string]any{
		"feature": feature,
		"allowed": allowed,
	})
}

// TrackUsage bumps a usage counter. Only known features are counted.
func (h *entitlementHandler) TrackUsage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	feature := r.PathValue("feature")

	switch feature {
	case model.UsageFeatureVoiceRecording, model.UsageFeatureAIInsight, model.UsageFeatureAICoaching:
	default:
		api.Error(w, http.StatusBadRequest, "unknown usage feature")
		return
	}

	h.subscriptionService.TrackUsage(user.ID, feature)
	api.JSON(w, http.StatusAccepted, map[string]string{"status": "tracked"})
}

func (h *entitlementHandler) VoiceQuota(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	quota, err := h.subscriptionService.VoiceQuotaFor(user.ID)
	if err != nil {
		slog.Error("voice quota lookup failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to load quota")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"quota": quota})
}
