package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

type MoodRepository interface {
	Upsert(checkin *model.MoodCheckin) error
	Recent(userID string, limit int) ([]*model.MoodCheckin, error)
}

type moodRepository struct {
	db *sqlx.DB
}

func NewMoodRepository(db *sqlx.DB) MoodRepository {
	return &moodRepository{db: db}
}

// Upsert writes the check-in for (user, day); repeated calls for the same
// day overwrite mood and note. Last write wins.
func (r *moodRepository) Upsert(checkin *model.MoodCheckin) error {
	if checkin.ID == "" {
		checkin.ID = uuid.New().String()
	}
	now := time.Now()
	if checkin.CreatedAt.IsZero() {
		checkin.CreatedAt = now
	}
	checkin.UpdatedAt = now

	query := `
		INSERT INTO mood_checkins (id, user_id, mood, note, day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, day) DO UPDATE
		SET mood = excluded.mood, note = excluded.note, updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		checkin.ID,
		checkin.UserID,
		checkin.Mood,
		checkin.Note,
		checkin.Day,
		checkin.CreatedAt,
		checkin.UpdatedAt,
	)
	return err
}

func (r *moodRepository) Recent(userID string, limit int) ([]*model.MoodCheckin, error) {
	var checkins []*model.MoodCheckin
	query := `SELECT * FROM mood_checkins WHERE user_id = $1 ORDER BY day DESC LIMIT $2`

	err := r.db.Select(&checkins, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return checkins, nil
}
