package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

var ErrRecordingNotFound = errors.New("recording not found")

type RecordingRepository interface {
	Create(rec *model.Recording) error
	ByID(userID, recordingID string) (*model.Recording, error)
	ByUser(userID string) ([]*model.Recording, error)
	LinkEntry(userID, recordingID, entryID string) error
	Delete(userID, recordingID string) error
}

type recordingRepository struct {
	db *sqlx.DB
}

func NewRecordingRepository(db *sqlx.DB) RecordingRepository {
	return &recordingRepository{db: db}
}

func (r *recordingRepository) Create(rec *model.Recording) error {
	query := `
		INSERT INTO recordings (id, user_id, entry_id, filename, original_name, mime_type, size, duration_seconds, storage_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(query,
		rec.ID,
		rec.UserID,
		rec.EntryID,
		rec.Filename,
		rec.OriginalName,
		rec.MimeType,
		rec.Size,
		rec.DurationSeconds,
		rec.StoragePath,
		rec.CreatedAt,
	)
	return err
}

func (r *recordingRepository) ByID(userID, recordingID string) (*model.Recording, error) {
	rec := &model.Recording{}
	query := `SELECT * FROM recordings WHERE id = $1 AND user_id = $2`

	err := r.db.Get(rec, query, recordingID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrRecordingNotFound
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *recordingRepository) ByUser(userID string) ([]*model.Recording, error) {
	var recs []*model.Recording
	query := `SELECT * FROM recordings WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&recs, query, userID)
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// LinkEntry points a recording at the journal entry it belongs to.
// Recordings are otherwise immutable.
func (r *recordingRepository) LinkEntry(userID, recordingID, entryID string) error {
	result, err := r.db.Exec(`UPDATE recordings SET entry_id = $1 WHERE id = $2 AND user_id = $3`, entryID, recordingID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordingNotFound
	}

	return nil
}

func (r *recordingRepository) Delete(userID, recordingID string) error {
	result, err := r.db.Exec(`DELETE FROM recordings WHERE id = $1 AND user_id = $2`, recordingID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordingNotFound
	}

	return nil
}
