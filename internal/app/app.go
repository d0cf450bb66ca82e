package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/content"
	"github.com/haven-journal/haven/internal/config"
	"github.com/haven-journal/haven/internal/db"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/service"
	"github.com/haven-journal/haven/internal/service/payment"
	"github.com/haven-journal/haven/internal/storage"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	UserRepository      repository.UserRepository
	AuthService         *service.AuthService
	ProfileService      *service.ProfileService
	EmailService        *service.EmailService
	SubscriptionService *service.SubscriptionService
	PaymentService      payment.Provider
	JournalService      *service.JournalService
	GoalService         *service.GoalService
	ScenarioService     *service.ScenarioService
	AIService           *service.AIService
	SpeechService       *service.SpeechService
	RecordingService    *service.RecordingService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	subscriptionRepository := repository.NewSubscriptionRepository(database)
	tierRepository := repository.NewTierRepository(database)
	usageRepository := repository.NewUsageRepository(database)
	journalRepository := repository.NewJournalRepository(database)
	moodRepository := repository.NewMoodRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	goalProgressRepository := repository.NewGoalProgressRepository(database)
	recordingRepository := repository.NewRecordingRepository(database)

	// Storage for voice recordings
	recordingStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	subscriptionService := service.NewSubscriptionService(subscriptionRepository, tierRepository, usageRepository)

	// Initialize payment provider based on config
	paymentProvider, err := payment.NewProvider(cfg, subscriptionService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment provider: %v", err)
	}

	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		tokenRepository,
		subscriptionService,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
		cfg.TokenMagicLinkExpiry,
	)
	profileService := service.NewProfileService(profileRepository)
	journalService := service.NewJournalService(journalRepository, moodRepository)
	goalService := service.NewGoalService(goalRepository, goalProgressRepository, subscriptionService)

	scenarioService, err := service.NewScenarioService(content.ScenariosFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario catalog: %v", err)
	}

	aiService := service.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout, journalRepository, moodRepository)
	speechService := service.NewSpeechService(cfg.OpenAIAPIKey, cfg.OpenAITTSVoice, cfg.AITimeout)
	recordingService := service.NewRecordingService(recordingRepository, subscriptionService, recordingStorage)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		UserRepository:      userRepository,
		AuthService:         authService,
		ProfileService:      profileService,
		EmailService:        emailService,
		SubscriptionService: subscriptionService,
		PaymentService:      paymentProvider,
		JournalService:      journalService,
		GoalService:         goalService,
		ScenarioService:     scenarioService,
		AIService:           aiService,
		SpeechService:       speechService,
		RecordingService:    recordingService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
