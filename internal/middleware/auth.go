package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/model"
)

// The auth middleware accepts its collaborators as narrow interfaces so
// tests can fake them.
type tokenVerifier interface {
	VerifyJWT(token string) (jwt.MapClaims, error)
	ClearJWTCookie(w http.ResponseWriter)
}

type userLoader interface {
	ByID(id string) (*model.User, error)
}

type profileLoader interface {
	ByUserID(userID string) (*model.Profile, error)
}

type subscriptionLoader interface {
	Subscription(userID string) (*model.Subscription, error)
}

// AuthMiddleware resolves the session cookie into user + profile +
// subscription on every request. A cookie that no longer maps to a live
// account (deleted user, broken token) is cleared exactly once and the
// request continues unauthenticated.
func AuthMiddleware(verifier tokenVerifier, users userLoader, profiles profileLoader, subscriptions subscriptionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("auth_token")
			if err != nil {
				// No cookie, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyJWT(cookie.Value)
			if err != nil {
				verifier.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				verifier.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.ByID(userID)
			if err != nil {
				verifier.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = nil

			profile, err := profiles.ByUserID(userID)
			if err != nil {
				verifier.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			subscription, err := subscriptions.Subscription(userID)
			if err != nil {
				verifier.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithProfile(ctx, profile)
			ctx = ctxkeys.WithSubscription(ctx, subscription)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			api.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequireOnboarded rejects authenticated users who haven't finished the
// onboarding wizard. The onboarding endpoint itself uses RequireAuth only.
func RequireOnboarded(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		profile := ctxkeys.Profile(r.Context())
		if profile == nil || !profile.Onboarded() {
			api.Error(w, http.StatusForbidden, "onboarding required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireGuest rejects authenticated requests (signup and login).
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user != nil {
			api.Error(w, http.StatusConflict, "already signed in")
			return
		}
		next.ServeHTTP(w, r)
	}
}
