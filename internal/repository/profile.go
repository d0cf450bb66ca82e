package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	ByUserID(userID string) (*model.Profile, error)
	Create(profile *model.Profile) error
	Update(profile *model.Profile) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM profiles WHERE user_id = $1`, userID)

	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) Create(profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO profiles (id, user_id, name, pronouns, focus_areas, reflection, onboarded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, profile.ID, profile.UserID, profile.Name, profile.Pronouns, profile.FocusAreas, profile.Reflection, profile.OnboardedAt, profile.CreatedAt, profile.UpdatedAt)

	return err
}

func (r *profileRepository) Update(profile *model.Profile) error {
	profile.UpdatedAt = time.Now()

	result, err := r.db.Exec(`
		UPDATE profiles
		SET name = $1, pronouns = $2, focus_areas = $3, reflection = $4, onboarded_at = $5, updated_at = $6
		WHERE user_id = $7
	`, profile.Name, profile.Pronouns, profile.FocusAreas, profile.Reflection, profile.OnboardedAt, profile.UpdatedAt, profile.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}
