package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/ratelimit"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/validation"
)

const (
	// MinEntryLength is measured after sanitization, so padding an entry
	// with angle brackets or whitespace doesn't count.
	MinEntryLength = 10

	// Save limiter: 5 entries per rolling minute per user.
	journalSaveLimit  = 5
	journalSaveWindow = time.Minute
)

var (
	ErrContentTooShort = fmt.Errorf("entry must be at least %d characters", MinEntryLength)
	ErrTooManyTags     = fmt.Errorf("an entry can have at most %d tags", model.MaxEntryTags)
	ErrRateLimited     = errors.New("too many entries saved, slow down for a minute")
	ErrInvalidMood     = errors.New("mood must be between 1 and 5")
)

type JournalService struct {
	journalRepository repository.JournalRepository
	moodRepository    repository.MoodRepository
	saveLimiter       *ratelimit.Limiter
}

func NewJournalService(journalRepository repository.JournalRepository, moodRepository repository.MoodRepository) *JournalService {
	return &JournalService{
		journalRepository: journalRepository,
		moodRepository:    moodRepository,
		saveLimiter:       ratelimit.New(journalSaveLimit, journalSaveWindow),
	}
}

// CreateEntry sanitizes, validates, rate-limits, and persists a journal
// entry, in that order. The rate limit is only consumed by writes that
// pass validation.
func (s *JournalService) CreateEntry(userID, title, content, entryType string, tags []string, mood *int) (*model.JournalEntry, error) {
	title = validation.SanitizeContent(title)
	content = validation.SanitizeContent(content)

	if len([]rune(content)) < MinEntryLength {
		return nil, ErrContentTooShort
	}

	if len(tags) > model.MaxEntryTags {
		return nil, ErrTooManyTags
	}

	if mood != nil && (*mood < 1 || *mood > 5) {
		return nil, ErrInvalidMood
	}

	if entryType != model.EntryTypeVoice {
		entryType = model.EntryTypeText
	}

	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}

	if !s.saveLimiter.Allow(userID) {
		return nil, ErrRateLimited
	}

	entry := &model.JournalEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		EntryType: entryType,
		Tags:      cleaned,
		Mood:      mood,
		CreatedAt: time.Now(),
	}

	err := s.journalRepository.Create(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	return entry, nil
}

func (s *JournalService) Entry(userID, entryID string) (*model.JournalEntry, error) {
	return s.journalRepository.ByID(userID, entryID)
}

func (s *JournalService) Entries(userID string, limit int) ([]*model.JournalEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	entries, err := s.journalRepository.Entries(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	return entries, nil
}

// CheckinMood records today's mood check-in, overwriting any earlier
// check-in for the same day.
func (s *JournalService) CheckinMood(userID string, mood int, note string) (*model.MoodCheckin, error) {
	if mood < 1 || mood > 5 {
		return nil, ErrInvalidMood
	}

	checkin := &model.MoodCheckin{
		UserID: userID,
		Mood:   mood,
		Note:   validation.SanitizeContent(note),
		Day:    time.Now().Format("2006-01-02"),
	}

	err := s.moodRepository.Upsert(checkin)
	if err != nil {
		return nil, fmt.Errorf("failed to save mood check-in: %w", err)
	}

	return checkin, nil
}

func (s *JournalService) RecentMoods(userID string, limit int) ([]*model.MoodCheckin, error) {
	if limit <= 0 || limit > 90 {
		limit = 30
	}

	checkins, err := s.moodRepository.Recent(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood check-ins: %w", err)
	}

	return checkins, nil
}
