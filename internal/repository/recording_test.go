package repository

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func setupRecordingMock(t *testing.T) (RecordingRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewRecordingRepository(sqlx.NewDb(db, "sqlite"))
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestLinkEntryScopedToOwner(t *testing.T) {
	repo, mock, cleanup := setupRecordingMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE recordings SET entry_id = $1 WHERE id = $2 AND user_id = $3`)).
		WithArgs("entry-1", "rec-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.LinkEntry("user-1", "rec-1", "entry-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestLinkEntryNotFoundWhenNoRowMatches(t *testing.T) {
	repo, mock, cleanup := setupRecordingMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE recordings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LinkEntry("user-1", "rec-1", "entry-1")
	if !errors.Is(err, ErrRecordingNotFound) {
		t.Errorf("expected ErrRecordingNotFound, got %v", err)
	}
}

func TestDeleteNotFoundWhenNoRowMatches(t *testing.T) {
	repo, mock, cleanup := setupRecordingMock(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM recordings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete("user-1", "rec-1")
	if !errors.Is(err, ErrRecordingNotFound) {
		t.Errorf("expected ErrRecordingNotFound, got %v", err)
	}
}
