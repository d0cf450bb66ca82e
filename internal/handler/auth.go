package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/config"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/service"
)

type authHandler struct {
	authService       *service.AuthService
	googleOAuthConfig *oauth2.Config
	githubOAuthConfig *oauth2.Config
	appURL            string
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *authHandler {
	return &authHandler{
		authService: authService,
		appURL:      cfg.AppURL,
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		},
		githubOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a password account and signs the user in.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists),
			errors.Is(err, service.ErrInvalidEmail):
			api.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("registration failed", "error", err)
			api.Error(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	err = h.signIn(w, user)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	api.JSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Login authenticates with email + password.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Don't distinguish between unknown email and wrong password
		api.Error(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
		return
	}

	err = h.signIn(w, user)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "an error occurred, please try again")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	api.JSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

type magicLinkRequest struct {
	Email string `json:"email"`
}

// MagicLink sends a one-time sign-in link. Always answers 200 so the
// endpoint can't be used to probe which emails exist.
func (h *authHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.authService.SendMagicLink(req.Email)
	if err != nil && !errors.Is(err, service.ErrInvalidEmail) {
		slog.Error("magic link send failed", "error", err)
	}

	api.JSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyMagicLink consumes the emailed token and signs the user in. This
// is a browser navigation, so it redirects rather than answering JSON.
func (h *authHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	user, err := h.authService.VerifyMagicLink(token)
	if err != nil {
		slog.Warn("magic link verification failed", "error", err)
		http.Redirect(w, r, h.appURL+"/auth?error=invalid_link", http.StatusSeeOther)
		return
	}

	err = h.signIn(w, user)
	if err != nil {
		http.Redirect(w, r, h.appURL+"/auth?error=server", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.appURL+"/app/journal", http.StatusSeeOther)
}

// GoogleAuth redirects user to Google OAuth consent screen
func (h *authHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	state := h.setOAuthState(w, r)
	url := h.googleOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback handles the OAuth callback from Google
func (h *authHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code, ok := h.checkOAuthCallback(w, r, "google")
	if !ok {
		return
	}

	token, err := h.googleOAuthConfig.Exchange(context.Background(), code)
	if err != nil {
		slog.Error("google oauth token exchange failed", "error", err)
		h.oauthFailed(w, r)
		return
	}

	client := h.googleOAuthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		slog.Error("failed to get google user info", "error", err)
		h.oauthFailed(w, r)
		return
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	var userInfo struct {
		Email string `json:"email"`
	}
	err = json.NewDecoder(resp.Body).Decode(&userInfo)
	if err != nil {
		slog.Error("failed to decode google user info", "error", err)
		h.oauthFailed(w, r)
		return
	}

	h.finishOAuth(w, r, userInfo.Email, "google")
}

// GitHubAuth redirects user to GitHub OAuth consent screen
func (h *authHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	state := h.setOAuthState(w, r)
	url := h.githubOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GitHubCallback handles the OAuth callback from GitHub
func (h *authHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	code, ok := h.checkOAuthCallback(w, r, "github")
	if !ok {
		return
	}

	token, err := h.githubOAuthConfig.Exchange(context.Background(), code)
	if err != nil {
		slog.Error("github oauth token exchange failed", "error", err)
		h.oauthFailed(w, r)
		return
	}

	client := h.githubOAuthConfig.Client(context.Background(), token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		slog.Error("failed to get github user info", "error", err)
		h.oauthFailed(w, r)
		return
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	var userInfo struct {
		Email string `json:"email"`
	}
	err = json.NewDecoder(resp.Body).Decode(&userInfo)
	if err != nil {
		slog.Error("failed to decode github user info", "error", err)
		h.oauthFailed(w, r)
		return
	}

	// GitHub API may not return email in main response if it's private
	// Need to fetch from /user/emails endpoint
	if userInfo.Email == "" {
		emailResp, err := client.Get("https://api.github.com/user/emails")
		if err != nil {
			slog.Error("failed to get github user emails", "error", err)
			h.oauthFailed(w, r)
			return
		}
		defer func() {
			closeErr := emailResp.Body.Close()
			if closeErr != nil {
				slog.Error("failed to close email response body", "error", closeErr)
			}
		}()

		var emails []struct {
			Email   string `json:"email"`
			Primary bool   `json:"primary"`
		}
		err = json.NewDecoder(emailResp.Body).Decode(&emails)
		if err != nil {
			slog.Error("failed to decode github emails", "error", err)
			h.oauthFailed(w, r)
			return
		}

		for _, e := range emails {
			if e.Primary {
				userInfo.Email = e.Email
				break
			}
		}
	}

	if userInfo.Email == "" {
		slog.Warn("github oauth: no email found")
		h.oauthFailed(w, r)
		return
	}

	h.finishOAuth(w, r, userInfo.Email, "github")
}

// setOAuthState generates and stores the OAuth state cookie, returning
// the state value.
func (h *authHandler) setOAuthState(w http.ResponseWriter, r *http.Request) string {
	state := generateOAuthState()

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction, // Secure flag based on APP_ENV (safer than r.TLS behind load balancers)
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	return state
}

// checkOAuthCallback validates state and extracts the authorization code.
func (h *authHandler) checkOAuthCallback(w http.ResponseWriter, r *http.Request, provider string) (string, bool) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("oauth state validation failed", "provider", provider, "error", err)
		h.oauthFailed(w, r)
		return "", false
	}

	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider)
		h.oauthFailed(w, r)
		return "", false
	}

	return code, true
}

func (h *authHandler) finishOAuth(w http.ResponseWriter, r *http.Request, email, provider string) {
	user, err := h.authService.AuthenticateOAuth(email, provider)
	if err != nil {
		slog.Error("oauth authentication failed", "error", err, "email", email, "provider", provider)
		h.oauthFailed(w, r)
		return
	}

	err = h.signIn(w, user)
	if err != nil {
		h.oauthFailed(w, r)
		return
	}

	slog.Info("user logged in with oauth", "user_id", user.ID, "email", user.Email, "provider", provider)
	http.Redirect(w, r, h.appURL+"/app/journal", http.StatusSeeOther)
}

func (h *authHandler) oauthFailed(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.appURL+"/auth?error=oauth", http.StatusSeeOther)
}

// signIn issues the session cookie for a user.
func (h *authHandler) signIn(w http.ResponseWriter, user *model.User) error {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		return err
	}

	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.JWTExpiry()))
	return nil
}

// generateOAuthState creates cryptographically secure random state token for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
