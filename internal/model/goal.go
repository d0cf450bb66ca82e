package model

import (
	"time"
)

const (
	GoalStatusActive   = "active"
	GoalStatusArchived = "archived"
)

const (
	GoalCadenceDaily  = "daily"
	GoalCadenceWeekly = "weekly"
)

type WellnessGoal struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Cadence     string    `db:"cadence" json:"cadence"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GoalProgress is the per-day completion record for a goal, upserted
// idempotently by (user_id, goal_id, day). Day is YYYY-MM-DD.
type GoalProgress struct {
	ID        string    `db:"id" json:"id"`
	GoalID    string    `db:"goal_id" json:"goal_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Day       string    `db:"day" json:"day"`
	Completed bool      `db:"completed" json:"completed"`
	Note      string    `db:"note" json:"note"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
