package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/model"
)

type fakeVerifier struct {
	claims     jwt.MapClaims
	verifyErr  error
	clearCalls int
}

func (f *fakeVerifier) VerifyJWT(token string) (jwt.MapClaims, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.claims, nil
}

func (f *fakeVerifier) ClearJWTCookie(w http.ResponseWriter) {
	f.clearCalls++
}

type fakeUsers struct {
	user *model.User
	err  error
}

func (f *fakeUsers) ByID(id string) (*model.User, error) { return f.user, f.err }

type fakeProfiles struct {
	profile *model.Profile
	err     error
}

func (f *fakeProfiles) ByUserID(userID string) (*model.Profile, error) { return f.profile, f.err }

type fakeSubs struct {
	sub *model.Subscription
	err error
}

func (f *fakeSubs) Subscription(userID string) (*model.Subscription, error) { return f.sub, f.err }

func onboardedProfile() *model.Profile {
	now := time.Now()
	return &model.Profile{UserID: "user-1", Name: "Sam", OnboardedAt: &now}
}

func authedRequest() *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/journal/entries", nil)
	r.AddCookie(&http.Cookie{Name: "auth_token", Value: "token"})
	return r
}

func TestAuthMiddlewareNoCookiePassesThrough(t *testing.T) {
	verifier := &fakeVerifier{}
	mw := AuthMiddleware(verifier, &fakeUsers{}, &fakeProfiles{}, &fakeSubs{})

	var sawUser *model.User
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawUser = ctxkeys.User(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Nil(t, sawUser)
	assert.Zero(t, verifier.clearCalls)
}

func TestAuthMiddlewareResolvesSession(t *testing.T) {
	hash := "secret-hash"
	verifier := &fakeVerifier{claims: jwt.MapClaims{"user_id": "user-1"}}
	users := &fakeUsers{user: &model.User{ID: "user-1", Email: "sam@example.com", PasswordHash: &hash}}
	profiles := &fakeProfiles{profile: onboardedProfile()}
	subs := &fakeSubs{sub: &model.Subscription{UserID: "user-1", PlanID: model.PlanFree, Status: model.SubscriptionStatusActive}}

	mw := AuthMiddleware(verifier, users, profiles, subs)

	var gotUser *model.User
	var gotProfile *model.Profile
	var gotSub *model.Subscription
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = ctxkeys.User(r.Context())
		gotProfile = ctxkeys.Profile(r.Context())
		gotSub = ctxkeys.Subscription(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), authedRequest())

	require.NotNil(t, gotUser)
	assert.Equal(t, "user-1", gotUser.ID)
	assert.Nil(t, gotUser.PasswordHash, "password hash must not reach the request context")
	require.NotNil(t, gotProfile)
	require.NotNil(t, gotSub)
	assert.Zero(t, verifier.clearCalls)
}

func TestAuthMiddlewareBrokenTokenClearsCookieOnce(t *testing.T) {
	verifier := &fakeVerifier{verifyErr: errors.New("token expired")}
	mw := AuthMiddleware(verifier, &fakeUsers{}, &fakeProfiles{}, &fakeSubs{})

	handlerRan := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		assert.Nil(t, ctxkeys.User(r.Context()))
	}))

	h.ServeHTTP(httptest.NewRecorder(), authedRequest())

	assert.True(t, handlerRan, "request continues unauthenticated")
	assert.Equal(t, 1, verifier.clearCalls)
}

func TestAuthMiddlewareDeletedUserClearsCookie(t *testing.T) {
	verifier := &fakeVerifier{claims: jwt.MapClaims{"user_id": "user-1"}}
	users := &fakeUsers{err: errors.New("user not found")}
	mw := AuthMiddleware(verifier, users, &fakeProfiles{}, &fakeSubs{})

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, ctxkeys.User(r.Context()))
	}))

	h.ServeHTTP(httptest.NewRecorder(), authedRequest())
	assert.Equal(t, 1, verifier.clearCalls)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	h := RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication required")
}

func TestRequireOnboardedRejectsUnfinishedProfile(t *testing.T) {
	h := RequireOnboarded(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ctxkeys.WithUser(r.Context(), &model.User{ID: "user-1"})
	ctx = ctxkeys.WithProfile(ctx, &model.Profile{UserID: "user-1"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "onboarding required")
}

func TestRequireOnboardedAllowsFinishedProfile(t *testing.T) {
	ran := false
	h := RequireOnboarded(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ctxkeys.WithUser(r.Context(), &model.User{ID: "user-1"})
	ctx = ctxkeys.WithProfile(ctx, onboardedProfile())

	h.ServeHTTP(httptest.NewRecorder(), r.WithContext(ctx))
	assert.True(t, ran)
}

func TestRequireGuestRejectsSignedIn(t *testing.T) {
	h := RequireGuest(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	ctx := ctxkeys.WithUser(r.Context(), &model.User{ID: "user-1"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r.WithContext(ctx))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
