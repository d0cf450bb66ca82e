package model

import (
	"time"
)

// Recording is a voice-journal audio object stored in S3-compatible storage.
type Recording struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	EntryID         *string   `db:"entry_id" json:"entry_id,omitempty"`
	Filename        string    `db:"filename" json:"filename"`
	OriginalName    string    `db:"original_name" json:"original_name"`
	MimeType        string    `db:"mime_type" json:"mime_type"`
	Size            int64     `db:"size" json:"size"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	StoragePath     string    `db:"storage_path" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
