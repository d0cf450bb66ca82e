package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrTooManyFocusAreas  = errors.New("select at most 3 focus areas")
	ErrNameRequired       = errors.New("name is required")
)

type AuthService struct {
	userRepository       repository.UserRepository
	profileRepository    repository.ProfileRepository
	tokenRepository      repository.TokenRepository
	subscriptionService  *SubscriptionService
	emailService         *EmailService
	jwtSecret            string
	isProduction         bool
	jwtExpiry            time.Duration
	tokenMagicLinkExpiry time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	tokenRepository repository.TokenRepository,
	subscriptionService *SubscriptionService,
	emailService *EmailService,
	jwtSecret string,
	isProduction bool,
	jwtExpiry time.Duration,
	tokenMagicLinkExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:       userRepository,
		profileRepository:    profileRepository,
		tokenRepository:      tokenRepository,
		subscriptionService:  subscriptionService,
		emailService:         emailService,
		jwtSecret:            jwtSecret,
		isProduction:         isProduction,
		jwtExpiry:            jwtExpiry,
		tokenMagicLinkExpiry: tokenMagicLinkExpiry,
	}
}

// Register creates a user with a password, an empty profile, and a free
// subscription. The profile stays empty until onboarding completes.
func (s *AuthService) Register(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: &hash,
		// Email is verified on first sign-in; password accounts can use
		// the app immediately.
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.createDefaults(user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("new user registered", "email", email, "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, fmt.Errorf("this account uses passwordless login, use the magic link option")
	}

	err = s.ComparePassword(password, *user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// SendMagicLink sends a one-time sign-in link, creating a passwordless
// account on first use.
func (s *AuthService) SendMagicLink(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("failed to lookup user: %w", err)
		}

		user = &model.User{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: time.Now(),
			// password_hash is NULL for passwordless accounts
		}

		err = s.userRepository.Create(user)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		err = s.createDefaults(user.ID)
		if err != nil {
			return err
		}

		slog.Info("new passwordless user created", "email", email, "user_id", user.ID)
	}

	// Delete any existing magic link tokens for this user
	err = s.tokenRepository.DeleteByUserAndType(user.ID, model.TokenTypeMagicLink)
	if err != nil {
		slog.Warn("failed to delete old magic link tokens", "error", err, "user_id", user.ID)
	}

	magicToken, err := s.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	token := &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeMagicLink,
		Token:     magicToken,
		ExpiresAt: time.Now().Add(s.tokenMagicLinkExpiry),
	}
	err = s.tokenRepository.Create(token)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	err = s.emailService.SendMagicLinkEmail(user.Email, magicToken)
	if err != nil {
		slog.Error("failed to send magic link email", "error", err, "email", user.Email)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("magic link sent", "email", user.Email)
	return nil
}

// VerifyMagicLink verifies the magic link token and returns the authenticated user
func (s *AuthService) VerifyMagicLink(token string) (*model.User, error) {
	// ConsumeToken atomically marks token as used (prevents race conditions)
	tokenModel, err := s.tokenRepository.ConsumeToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired magic link")
	}

	if tokenModel.Type != model.TokenTypeMagicLink {
		return nil, fmt.Errorf("invalid token type")
	}

	user, err := s.userRepository.ByID(tokenModel.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Auto-verify email (important for passwordless registration)
	if user.EmailVerifiedAt == nil {
		now := time.Now()
		user.EmailVerifiedAt = &now
		err = s.userRepository.Update(user)
		if err != nil {
			slog.Warn("failed to verify email", "error", err, "user_id", user.ID)
		}
	}

	slog.Info("user authenticated via magic link", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// AuthenticateOAuth handles OAuth authentication (Google, GitHub).
// It creates a new user if one doesn't exist, or returns the existing user.
func (s *AuthService) AuthenticateOAuth(email, provider string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to lookup user: %w", err)
		}

		now := time.Now()
		user = &model.User{
			ID:              uuid.New().String(),
			Email:           email,
			EmailVerifiedAt: &now, // OAuth provider has verified email
			CreatedAt:       now,
		}

		err = s.userRepository.Create(user)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		err = s.createDefaults(user.ID)
		if err != nil {
			return nil, err
		}

		slog.Info("new OAuth user created", "email", email, "user_id", user.ID, "provider", provider)
		return user, nil
	}

	if user.EmailVerifiedAt == nil {
		now := time.Now()
		user.EmailVerifiedAt = &now
		err = s.userRepository.Update(user)
		if err != nil {
			slog.Warn("failed to mark email as verified", "error", err, "user_id", user.ID)
		}
	}

	slog.Info("user authenticated via OAuth", "user_id", user.ID, "email", user.Email, "provider", provider)
	return user, nil
}

// createDefaults creates the empty profile and free subscription every new
// account starts with.
func (s *AuthService) createDefaults(userID string) error {
	profile := &model.Profile{
		ID:     uuid.New().String(),
		UserID: userID,
	}

	err := s.profileRepository.Create(profile)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	err = s.subscriptionService.CreateFreeSubscription(userID)
	if err != nil {
		slog.Warn("failed to create free subscription", "error", err, "user_id", userID)
		// Don't fail account creation
	}

	return nil
}

// CompleteOnboarding fills the profile from the onboarding wizard.
// The focus-area selection never exceeds model.MaxFocusAreas.
func (s *AuthService) CompleteOnboarding(userID, name, pronouns string, focusAreas []string, reflection string) error {
	name = strings.TrimSpace(name)

	err := validation.ValidateName(name)
	if err != nil {
		return ErrNameRequired
	}

	if len(focusAreas) > model.MaxFocusAreas {
		return ErrTooManyFocusAreas
	}

	profile, err := s.profileRepository.ByUserID(userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	now := time.Now()
	profile.Name = name
	profile.Pronouns = strings.TrimSpace(pronouns)
	profile.FocusAreas = focusAreas
	profile.Reflection = validation.SanitizeContent(reflection)
	profile.OnboardedAt = &now

	err = s.profileRepository.Update(profile)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := s.userRepository.ByID(userID)
	if err == nil {
		err = s.emailService.SendWelcomeEmail(user.Email, name)
		if err != nil {
			slog.Warn("failed to send welcome email", "error", err, "email", user.Email)
		}
	}

	slog.Info("onboarding completed", "user_id", userID, "name", name)
	return nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// JWTExpiry exposes the configured session lifetime for cookie expiry.
func (s *AuthService) JWTExpiry() time.Duration {
	return s.jwtExpiry
}
