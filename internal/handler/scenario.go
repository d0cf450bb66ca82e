package handler

import (
	"net/http"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/service"
)

type scenarioHandler struct {
	scenarioService     *service.ScenarioService
	subscriptionService *service.SubscriptionService
}

func NewScenarioHandler(scenarioService *service.ScenarioService, subscriptionService *service.SubscriptionService) *scenarioHandler {
	return &scenarioHandler{
		scenarioService:     scenarioService,
		subscriptionService: subscriptionService,
	}
}

// Scenarios lists the catalog, optionally filtered by ?search=,
// ?category=, and ?difficulty=.
func (h *scenarioHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	scenarios := h.scenarioService.Filter(
		query.Get("search"),
		query.Get("category"),
		query.Get("difficulty"),
	)

	api.JSON(w, http.StatusOK, map[string]any{
		"scenarios":  scenarios,
		"categories": h.scenarioService.Categories(),
	})
}

// Scenario returns a single scenario with its full briefing. The catalog
// itself is browsable by anyone, but advanced briefings are part of the
// dialogue simulator and need that feature on the caller's plan.
func (h *scenarioHandler) Scenario(w http.ResponseWriter, r *http.Request) {
	scenario := h.scenarioService.BySlug(r.PathValue("slug"))
	if scenario == nil {
		api.Error(w, http.StatusNotFound, "scenario not found")
		return
	}

	if scenario.Difficulty == model.DifficultyAdvanced {
		user := ctxkeys.User(r.Context())
		if user == nil {
			api.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !h.subscriptionService.CanAccessFeature(user.ID, model.FeatureDialogueSimulator) {
			api.Error(w, http.StatusForbidden, service.ErrFeatureNotIncluded.Error())
			return
		}
	}

	api.JSON(w, http.StatusOK, map[string]any{"scenario": scenario})
}
