package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

type UsageRepository interface {
	Increment(userID, feature, periodStart string) error
	AddVoiceSeconds(userID, periodStart string, seconds int) error
	ByKey(userID, feature, periodStart string) (*model.Usage, error)
}

type usageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Increment bumps the counter for (user, feature, period), creating the row
// on first use. Repeated calls are cumulative; the upsert keeps two
// near-simultaneous increments from racing on row creation.
func (r *usageRepository) Increment(userID, feature, periodStart string) error {
	query := `
		INSERT INTO usage_tracking (id, user_id, feature, period_start, count, voice_seconds, updated_at)
		VALUES ($1, $2, $3, $4, 1, 0, $5)
		ON CONFLICT (user_id, feature, period_start) DO UPDATE
		SET count = usage_tracking.count + 1, updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, uuid.New().String(), userID, feature, periodStart, time.Now())
	return err
}

// AddVoiceSeconds accumulates recorded seconds against the voice-recording
// counter for the period, also bumping the recording count.
func (r *usageRepository) AddVoiceSeconds(userID, periodStart string, seconds int) error {
	query := `
		INSERT INTO usage_tracking (id, user_id, feature, period_start, count, voice_seconds, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, $6)
		ON CONFLICT (user_id, feature, period_start) DO UPDATE
		SET count = usage_tracking.count + 1,
		    voice_seconds = usage_tracking.voice_seconds + excluded.voice_seconds,
		    updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, uuid.New().String(), userID, model.UsageFeatureVoiceRecording, periodStart, seconds, time.Now())
	return err
}

// ByKey returns the usage row for (user, feature, period), or a zero-count
// row if none exists yet.
func (r *usageRepository) ByKey(userID, feature, periodStart string) (*model.Usage, error) {
	usage := &model.Usage{}
	query := `SELECT * FROM usage_tracking WHERE user_id = $1 AND feature = $2 AND period_start = $3`

	err := r.db.Get(usage, query, userID, feature, periodStart)
	if err == sql.ErrNoRows {
		return &model.Usage{
			UserID:      userID,
			Feature:     feature,
			PeriodStart: periodStart,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return usage, nil
}
