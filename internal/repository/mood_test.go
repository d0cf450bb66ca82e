package repository

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/haven-journal/haven/internal/model"
)

func setupMoodMock(t *testing.T) (MoodRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewMoodRepository(sqlx.NewDb(db, "sqlite"))
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestMoodUpsertAssignsIDAndTimestamps(t *testing.T) {
	repo, mock, cleanup := setupMoodMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO mood_checkins").
		WillReturnResult(sqlmock.NewResult(0, 1))

	checkin := &model.MoodCheckin{
		UserID: "user-1",
		Mood:   4,
		Note:   "steady",
		Day:    "2026-08-28",
	}

	err := repo.Upsert(checkin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if checkin.ID == "" {
		t.Error("Upsert should assign an ID")
	}
	if checkin.CreatedAt.IsZero() || checkin.UpdatedAt.IsZero() {
		t.Error("Upsert should set timestamps")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestMoodUpsertUsesConflictClause(t *testing.T) {
	repo, mock, cleanup := setupMoodMock(t)
	defer cleanup()

	// The same-day overwrite semantics hang on this conflict target.
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, day) DO UPDATE")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(&model.MoodCheckin{UserID: "user-1", Mood: 2, Day: "2026-08-28"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestMoodUpsertPropagatesError(t *testing.T) {
	repo, mock, cleanup := setupMoodMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO mood_checkins").
		WillReturnError(errors.New("disk full"))

	err := repo.Upsert(&model.MoodCheckin{UserID: "user-1", Mood: 3, Day: "2026-08-28"})
	if err == nil {
		t.Error("expected error, got nil")
	}
}
