package routes

import (
	"net/http"

	"github.com/haven-journal/haven/internal/app"
	"github.com/haven-journal/haven/internal/handler"
	"github.com/haven-journal/haven/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	session := handler.NewSessionHandler(app.SubscriptionService)
	profile := handler.NewProfileHandler(app.AuthService, app.ProfileService)
	journal := handler.NewJournalHandler(app.JournalService)
	goal := handler.NewGoalHandler(app.GoalService)
	scenario := handler.NewScenarioHandler(app.ScenarioService, app.SubscriptionService)
	ai := handler.NewAIHandler(app.AIService, app.SpeechService, app.ScenarioService, app.SubscriptionService)
	recording := handler.NewRecordingHandler(app.RecordingService)
	entitlement := handler.NewEntitlementHandler(app.SubscriptionService)
	billing := handler.NewBillingHandler(app.PaymentService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Session & catalog
	mux.HandleFunc("GET /api/session", session.Session)
	mux.HandleFunc("GET /api/tiers", entitlement.Tiers)
	mux.HandleFunc("GET /api/scenarios", scenario.Scenarios)
	mux.HandleFunc("GET /api/scenarios/{slug}", scenario.Scenario)

	// Auth - Authentication flow (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/auth/register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /api/auth/magic-link", rateLimiter(middleware.RequireGuest(auth.MagicLink)))
	mux.HandleFunc("GET /auth/magic-link/{token}", auth.VerifyMagicLink)

	// OAuth
	mux.HandleFunc("GET /auth/google", rateLimiter(middleware.RequireGuest(auth.GoogleAuth)))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /auth/github", rateLimiter(middleware.RequireGuest(auth.GitHubAuth)))
	mux.HandleFunc("GET /auth/github/callback", rateLimiter(auth.GitHubCallback))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Signed in, onboarding not yet required
	mux.HandleFunc("POST /api/auth/logout", middleware.RequireAuth(auth.Logout))
	mux.HandleFunc("POST /api/onboarding", middleware.RequireAuth(profile.CompleteOnboarding))

	// Profile
	mux.HandleFunc("GET /api/profile", middleware.RequireOnboarded(profile.Profile))
	mux.HandleFunc("PUT /api/profile", middleware.RequireOnboarded(profile.UpdateProfile))

	// Journal & mood
	mux.HandleFunc("POST /api/journal/entries", middleware.RequireOnboarded(journal.CreateEntry))
	mux.HandleFunc("GET /api/journal/entries", middleware.RequireOnboarded(journal.Entries))
	mux.HandleFunc("GET /api/journal/entries/{id}", middleware.RequireOnboarded(journal.Entry))
	mux.HandleFunc("PUT /api/mood", middleware.RequireOnboarded(journal.CheckinMood))
	mux.HandleFunc("GET /api/mood", middleware.RequireOnboarded(journal.Moods))

	// Goals
	mux.HandleFunc("POST /api/goals", middleware.RequireOnboarded(goal.CreateGoal))
	mux.HandleFunc("GET /api/goals", middleware.RequireOnboarded(goal.Goals))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireOnboarded(goal.Goal))
	mux.HandleFunc("PUT /api/goals/{id}", middleware.RequireOnboarded(goal.UpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireOnboarded(goal.DeleteGoal))
	mux.HandleFunc("PUT /api/goals/{id}/progress/{day}", middleware.RequireOnboarded(goal.RecordProgress))
	mux.HandleFunc("GET /api/goals/{id}/progress", middleware.RequireOnboarded(goal.Progress))

	// AI
	mux.HandleFunc("GET /api/ai/prompt", middleware.RequireOnboarded(ai.Prompt))
	mux.HandleFunc("GET /api/ai/insights", middleware.RequireOnboarded(ai.Insights))
	mux.HandleFunc("POST /api/ai/coaching", middleware.RequireOnboarded(ai.Coaching))
	mux.HandleFunc("POST /api/ai/sentiment", middleware.RequireOnboarded(ai.Sentiment))
	mux.HandleFunc("POST /api/ai/speech", middleware.RequireOnboarded(ai.Speech))

	// Voice recordings
	mux.HandleFunc("POST /api/recordings", middleware.RequireOnboarded(recording.Upload))
	mux.HandleFunc("GET /api/recordings", middleware.RequireOnboarded(recording.Recordings))
	mux.HandleFunc("GET /api/recordings/{id}/url", middleware.RequireOnboarded(recording.PlaybackURL))
	mux.HandleFunc("POST /api/recordings/{id}/attach", middleware.RequireOnboarded(recording.Attach))
	mux.HandleFunc("DELETE /api/recordings/{id}", middleware.RequireOnboarded(recording.Delete))

	// Subscription & entitlements
	mux.HandleFunc("GET /api/subscription", middleware.RequireOnboarded(entitlement.Subscription))
	mux.HandleFunc("GET /api/features/{name}", middleware.RequireOnboarded(entitlement.Feature))
	mux.HandleFunc("POST /api/usage/{feature}", middleware.RequireOnboarded(entitlement.TrackUsage))
	mux.HandleFunc("GET /api/recordings/quota", middleware.RequireOnboarded(entitlement.VoiceQuota))

	// Billing
	mux.HandleFunc("POST /api/billing/checkout", middleware.RequireOnboarded(billing.CreateCheckout))
	mux.HandleFunc("GET /api/billing/portal", middleware.RequireOnboarded(billing.CustomerPortal))

	// ============================================================================
	// WEBHOOKS
	// ============================================================================

	// Payment provider webhook (works with both Polar and Stripe)
	mux.HandleFunc("POST /webhooks/payment", billing.Webhook)

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed downstream)
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection, // CSRF protection for all state-changing requests
		middleware.AuthMiddleware(app.AuthService, app.UserRepository, app.ProfileService, app.SubscriptionService),
	)

	return h
}
