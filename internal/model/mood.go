package model

import "time"

// MoodCheckin is one check-in per user per day, upserted by (user_id, day).
// Day is a date string in YYYY-MM-DD form.
type MoodCheckin struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Mood      int       `db:"mood" json:"mood"` // 1 (low) .. 5 (high)
	Note      string    `db:"note" json:"note"`
	Day       string    `db:"day" json:"day"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
