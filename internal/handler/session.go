package handler

import (
	"log/slog"
	"net/http"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/service"
)

type sessionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSessionHandler(subscriptionService *service.SubscriptionService) *sessionHandler {
	return &sessionHandler{subscriptionService: subscriptionService}
}

// Session describes the signed-in state in one round trip: who the user
// is, whether onboarding is done, and what their plan entitles them to.
// Unauthenticated callers get authenticated=false, not a 401; the client
// uses this on every page load.
func (h *sessionHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	if user == nil {
		api.JSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
			"csrf_token":    ctxkeys.CSRFToken(r.Context()),
		})
		return
	}

	profile := ctxkeys.Profile(r.Context())
	subscription := ctxkeys.Subscription(r.Context())

	response := map[string]any{
		"authenticated": true,
		"user":          user,
		"profile":       profile,
		"subscription":  subscription,
		"onboarded":     profile != nil && profile.Onboarded(),
		"csrf_token":    ctxkeys.CSRFToken(r.Context()),
	}

	tier, err := h.subscriptionService.TierFor(subscription)
	if err != nil {
		slog.Warn("session: tier lookup failed", "error", err, "user_id", user.ID)
	} else {
		response["tier"] = tier
	}

	api.JSON(w, http.StatusOK, response)
}
