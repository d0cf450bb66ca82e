package model

import "time"

const (
	EntryTypeText  = "text"
	EntryTypeVoice = "voice"
)

// MaxEntryTags caps the tag list on a journal entry.
const MaxEntryTags = 10

// JournalEntry is immutable after creation; list order is insertion time.
type JournalEntry struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Title     string     `db:"title" json:"title"`
	Content   string     `db:"content" json:"content"`
	EntryType string     `db:"entry_type" json:"entry_type"`
	Tags      StringList `db:"tags" json:"tags"`
	Mood      *int       `db:"mood" json:"mood,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
