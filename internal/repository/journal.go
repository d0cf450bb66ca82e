package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

var ErrEntryNotFound = errors.New("journal entry not found")

type JournalRepository interface {
	Create(entry *model.JournalEntry) error
	ByID(userID, entryID string) (*model.JournalEntry, error)
	Entries(userID string, limit int) ([]*model.JournalEntry, error)
	EntriesSince(userID string, sinceDay string) ([]*model.JournalEntry, error)
	CountByUser(userID string) (int, error)
}

type journalRepository struct {
	db *sqlx.DB
}

func NewJournalRepository(db *sqlx.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(entry *model.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, user_id, title, content, entry_type, tags, mood, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		entry.ID,
		entry.UserID,
		entry.Title,
		entry.Content,
		entry.EntryType,
		entry.Tags,
		entry.Mood,
		entry.CreatedAt,
	)

	return err
}

func (r *journalRepository) ByID(userID, entryID string) (*model.JournalEntry, error) {
	entry := &model.JournalEntry{}
	query := `SELECT * FROM journal_entries WHERE id = $1 AND user_id = $2`

	err := r.db.Get(entry, query, entryID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *journalRepository) Entries(userID string, limit int) ([]*model.JournalEntry, error) {
	var entries []*model.JournalEntry
	query := `SELECT * FROM journal_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	err := r.db.Select(&entries, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// EntriesSince returns entries created on or after the given day (YYYY-MM-DD),
// oldest first. Used to build the context window for AI reflections.
func (r *journalRepository) EntriesSince(userID string, sinceDay string) ([]*model.JournalEntry, error) {
	var entries []*model.JournalEntry
	query := `SELECT * FROM journal_entries WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at ASC`

	err := r.db.Select(&entries, query, userID, sinceDay)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *journalRepository) CountByUser(userID string) (int, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM journal_entries WHERE user_id = $1`, userID)
	return count, err
}
