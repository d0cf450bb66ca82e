package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

var ErrGoalNotFound = errors.New("wellness goal not found")

type GoalRepository interface {
	Create(goal *model.WellnessGoal) error
	ByID(userID, goalID string) (*model.WellnessGoal, error)
	Goals(userID string) ([]*model.WellnessGoal, error)
	CountUserGoals(userID string) (int, error)
	Update(goal *model.WellnessGoal) error
	Delete(userID, goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.WellnessGoal) error {
	query := `
		INSERT INTO wellness_goals (id, user_id, title, description, cadence, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Cadence,
		goal.Status,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	return err
}

func (r *goalRepository) ByID(userID, goalID string) (*model.WellnessGoal, error) {
	goal := &model.WellnessGoal{}
	query := `SELECT * FROM wellness_goals WHERE id = $1 AND user_id = $2`

	err := r.db.Get(goal, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (r *goalRepository) Goals(userID string) ([]*model.WellnessGoal, error) {
	var goals []*model.WellnessGoal
	query := `SELECT * FROM wellness_goals WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) CountUserGoals(userID string) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM wellness_goals WHERE user_id = $1 AND status = $2`, userID, model.GoalStatusActive)
	return count, err
}

func (r *goalRepository) Update(goal *model.WellnessGoal) error {
	goal.UpdatedAt = time.Now()

	result, err := r.db.Exec(`
		UPDATE wellness_goals
		SET title = $1, description = $2, cadence = $3, status = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, goal.Title, goal.Description, goal.Cadence, goal.Status, goal.UpdatedAt, goal.ID, goal.UserID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func (r *goalRepository) Delete(userID, goalID string) error {
	result, err := r.db.Exec(`DELETE FROM wellness_goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

type GoalProgressRepository interface {
	Upsert(progress *model.GoalProgress) error
	ByGoal(userID, goalID string, limit int) ([]*model.GoalProgress, error)
}

type goalProgressRepository struct {
	db *sqlx.DB
}

func NewGoalProgressRepository(db *sqlx.DB) GoalProgressRepository {
	return &goalProgressRepository{db: db}
}

// Upsert writes the per-day completion record keyed by (user, goal, day).
// Repeated calls for the same key are idempotent; last write wins.
func (r *goalProgressRepository) Upsert(progress *model.GoalProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.New().String()
	}
	progress.UpdatedAt = time.Now()

	query := `
		INSERT INTO daily_goal_progress (id, goal_id, user_id, day, completed, note, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, goal_id, day) DO UPDATE
		SET completed = excluded.completed, note = excluded.note, updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		progress.ID,
		progress.GoalID,
		progress.UserID,
		progress.Day,
		progress.Completed,
		progress.Note,
		progress.UpdatedAt,
	)
	return err
}

func (r *goalProgressRepository) ByGoal(userID, goalID string, limit int) ([]*model.GoalProgress, error) {
	var records []*model.GoalProgress
	query := `SELECT * FROM daily_goal_progress WHERE user_id = $1 AND goal_id = $2 ORDER BY day DESC LIMIT $3`

	err := r.db.Select(&records, query, userID, goalID, limit)
	if err != nil {
		return nil, err
	}

	return records, nil
}
