package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-journal/haven/internal/model"
)

type authFixture struct {
	service  *AuthService
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	tokens   *fakeTokenRepo
}

func newAuthFixture() *authFixture {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	tokens := newFakeTokenRepo()
	subs := NewSubscriptionService(&fakeSubscriptionRepo{}, catalog(), &fakeUsageRepo{})
	email := NewEmailService("", "noreply@example.com", "http://localhost:8090", "Haven", true)

	return &authFixture{
		service:  NewAuthService(users, profiles, tokens, subs, email, "test-secret", false, time.Hour, 10*time.Minute),
		users:    users,
		profiles: profiles,
		tokens:   tokens,
	}
}

const validPassword = "correct-horse-battery"

func TestRegisterCreatesUserWithDefaults(t *testing.T) {
	f := newAuthFixture()

	user, err := f.service.Register("Sam@Example.com", validPassword)
	require.NoError(t, err)

	assert.Equal(t, "sam@example.com", user.Email, "email is normalized")
	assert.True(t, user.HasPassword())
	assert.NotEqual(t, validPassword, *user.PasswordHash, "password is stored hashed")
	assert.NotNil(t, user.EmailVerifiedAt)

	profile, err := f.profiles.ByUserID(user.ID)
	require.NoError(t, err)
	assert.False(t, profile.Onboarded(), "profile starts empty")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register("sam@example.com", validPassword)
	require.NoError(t, err)

	_, err = f.service.Register("sam@example.com", validPassword)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	f := newAuthFixture()

	for _, email := range []string{"", "not-an-email", "@example.com"} {
		_, err := f.service.Register(email, validPassword)
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register("sam@example.com", "short")
	assert.Error(t, err)

	_, err = f.service.Register("sam@example.com", "password12345")
	assert.Error(t, err, "common patterns are rejected")
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture()

	_, err := f.service.Register("sam@example.com", validPassword)
	require.NoError(t, err)

	_, err = f.service.Login("sam@example.com", "wrong-password-entirely")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	f := newAuthFixture()

	// Unknown accounts and wrong passwords are indistinguishable.
	_, err := f.service.Login("nobody@example.com", validPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSucceeds(t *testing.T) {
	f := newAuthFixture()

	registered, err := f.service.Register("sam@example.com", validPassword)
	require.NoError(t, err)

	user, err := f.service.Login("SAM@example.com", validPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestMagicLinkCreatesPasswordlessAccount(t *testing.T) {
	f := newAuthFixture()

	err := f.service.SendMagicLink("new@example.com")
	require.NoError(t, err)

	user, err := f.users.ByEmail("new@example.com")
	require.NoError(t, err)
	assert.False(t, user.HasPassword())

	require.Len(t, f.tokens.byToken, 1)
}

func TestMagicLinkTokenSingleUse(t *testing.T) {
	f := newAuthFixture()

	err := f.service.SendMagicLink("sam@example.com")
	require.NoError(t, err)

	var magicToken string
	for token := range f.tokens.byToken {
		magicToken = token
	}

	user, err := f.service.VerifyMagicLink(magicToken)
	require.NoError(t, err)
	assert.NotNil(t, user.EmailVerifiedAt, "magic link sign-in verifies the email")

	_, err = f.service.VerifyMagicLink(magicToken)
	assert.Error(t, err, "a consumed token cannot be replayed")
}

func TestCompleteOnboardingLimitsFocusAreas(t *testing.T) {
	f := newAuthFixture()

	user, err := f.service.Register("sam@example.com", validPassword)
	require.NoError(t, err)

	err = f.service.CompleteOnboarding(user.ID, "Sam", "", []string{"a", "b", "c", "d"}, "")
	assert.ErrorIs(t, err, ErrTooManyFocusAreas)

	profile, err := f.profiles.ByUserID(user.ID)
	require.NoError(t, err)
	assert.False(t, profile.Onboarded())
}

func TestCompleteOnboardingRequiresName(t *testing.T) {
	f := newAuthFixture()

	user, err := f.service.Register("sam@example.com", validPassword)
	require.NoError(t, err)

	err = f.service.CompleteOnboarding(user.ID, "   ", "", nil, "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestCompleteOnboardingFillsProfile(t *testing.T) {
	f := newAuthFixture()

	user, err := f.service.Register("sam@example.com", validPassword)
	require.NoError(t, err)

	err = f.service.CompleteOnboarding(user.ID, "Sam", "they/them", []string{"stress", "sleep"}, "want <calm> mornings")
	require.NoError(t, err)

	profile, err := f.profiles.ByUserID(user.ID)
	require.NoError(t, err)
	assert.True(t, profile.Onboarded())
	assert.Equal(t, "Sam", profile.Name)
	assert.Equal(t, "they/them", profile.Pronouns)
	assert.Equal(t, model.StringList{"stress", "sleep"}, profile.FocusAreas)
	assert.Equal(t, "want calm mornings", profile.Reflection)
}

func TestAuthenticateOAuthIsIdempotent(t *testing.T) {
	f := newAuthFixture()

	first, err := f.service.AuthenticateOAuth("sam@example.com", "google")
	require.NoError(t, err)
	assert.NotNil(t, first.EmailVerifiedAt)

	second, err := f.service.AuthenticateOAuth("sam@example.com", "github")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same email maps to the same account across providers")
}

func TestJWTRoundTrip(t *testing.T) {
	f := newAuthFixture()

	user := &model.User{ID: "user-1", Email: "sam@example.com"}
	token, err := f.service.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := f.service.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "sam@example.com", claims["email"])
}

func TestVerifyJWTRejectsWrongSecret(t *testing.T) {
	f := newAuthFixture()
	other := newAuthFixture()
	other.service.jwtSecret = "different-secret"

	token, err := other.service.GenerateJWT(&model.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = f.service.VerifyJWT(token)
	assert.Error(t, err)
}
