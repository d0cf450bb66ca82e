package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	SupportEmail string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret                string
	JWTExpiry                time.Duration
	TokenEmailVerifyExpiry   time.Duration
	TokenPasswordResetExpiry time.Duration
	TokenMagicLinkExpiry     time.Duration

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// AI
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAITTSVoice string
	AITimeout      time.Duration

	// Payment
	PaymentProvider string // "polar" or "stripe"
	// Payment - Polar
	PolarAPIKey                  string
	PolarWebhookSecret           string
	PolarSandboxMode             bool
	PolarProductIDProMonthly     string
	PolarProductIDProYearly      string
	PolarProductIDPremiumMonthly string
	PolarProductIDPremiumYearly  string
	// Payment - Stripe
	StripeSecretKey             string
	StripeWebhookSecret         string
	StripePriceIDProMonthly     string
	StripePriceIDProYearly      string
	StripePriceIDPremiumMonthly string
	StripePriceIDPremiumYearly  string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	// Holds voice-journal recordings.
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string // Optional: for S3-compatible services
	S3PresignExpiry time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "Haven"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:       envRequired("APP_URL"), // Required: base URL for email links and OAuth redirects
		Port:         envString("PORT", "8090"),
		SupportEmail: envString("SUPPORT_EMAIL", "hello@example.com"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/haven.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret:                envRequired("JWT_SECRET"),
		JWTExpiry:                envDuration("JWT_EXPIRY", 168*time.Hour),                // 7 days
		TokenEmailVerifyExpiry:   envDuration("TOKEN_EMAIL_VERIFY_EXPIRY", 24*time.Hour),  // 24 hours
		TokenPasswordResetExpiry: envDuration("TOKEN_PASSWORD_RESET_EXPIRY", 1*time.Hour), // 1 hour
		TokenMagicLinkExpiry:     envDuration("TOKEN_MAGIC_LINK_EXPIRY", 10*time.Minute),  // 10 minutes

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     envString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: envString("GITHUB_CLIENT_SECRET", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// AI (OPENAI_API_KEY optional; AI endpoints degrade when missing)
		OpenAIAPIKey:   envString("OPENAI_API_KEY", ""),
		OpenAIModel:    envString("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITTSVoice: envString("OPENAI_TTS_VOICE", "alloy"),
		AITimeout:      envDuration("AI_TIMEOUT", 30*time.Second),

		// Payment (provider selection and configuration)
		PaymentProvider:              envString("PAYMENT_PROVIDER", "polar"), // Default: polar
		PolarAPIKey:                  envString("POLAR_API_KEY", ""),
		PolarWebhookSecret:           envString("POLAR_WEBHOOK_SECRET", ""),
		PolarSandboxMode:             envBool("POLAR_SANDBOX_MODE", envString("APP_ENV", "development") == "development"),
		PolarProductIDProMonthly:     envString("POLAR_PRODUCT_ID_PRO_MONTHLY", ""),
		PolarProductIDProYearly:      envString("POLAR_PRODUCT_ID_PRO_YEARLY", ""),
		PolarProductIDPremiumMonthly: envString("POLAR_PRODUCT_ID_PREMIUM_MONTHLY", ""),
		PolarProductIDPremiumYearly:  envString("POLAR_PRODUCT_ID_PREMIUM_YEARLY", ""),
		StripeSecretKey:              envString("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:          envString("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceIDProMonthly:      envString("STRIPE_PRICE_ID_PRO_MONTHLY", ""),
		StripePriceIDProYearly:       envString("STRIPE_PRICE_ID_PRO_YEARLY", ""),
		StripePriceIDPremiumMonthly:  envString("STRIPE_PRICE_ID_PREMIUM_MONTHLY", ""),
		StripePriceIDPremiumYearly:   envString("STRIPE_PRICE_ID_PREMIUM_YEARLY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required for voice recordings)
		S3Region:        envRequired("S3_REGION"),
		S3Bucket:        envRequired("S3_BUCKET"),
		S3AccessKey:     envRequired("S3_ACCESS_KEY"),
		S3SecretKey:     envRequired("S3_SECRET_KEY"),
		S3Endpoint:      envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows some services (like email and AI) to use fallback modes for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Error("production deployment requires OPENAI_API_KEY")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		AppURL:       c.AppURL,
		Port:         c.Port,
		SupportEmail: c.SupportEmail,

		EmailFrom: c.EmailFrom,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,

		S3Endpoint: c.S3Endpoint,
	}
}
