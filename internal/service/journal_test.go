package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-journal/haven/internal/model"
)

func newJournalService() (*JournalService, *fakeJournalRepo, *fakeMoodRepo) {
	journalRepo := &fakeJournalRepo{}
	moodRepo := &fakeMoodRepo{}
	return NewJournalService(journalRepo, moodRepo), journalRepo, moodRepo
}

func TestCreateEntryRejectsShortContent(t *testing.T) {
	s, repo, _ := newJournalService()

	_, err := s.CreateEntry("user-1", "", "too short", "", nil, nil)
	assert.ErrorIs(t, err, ErrContentTooShort)
	assert.Empty(t, repo.created)
}

func TestCreateEntryLengthMeasuredAfterSanitize(t *testing.T) {
	s, repo, _ := newJournalService()

	// Long enough raw, but only 7 characters survive sanitization.
	_, err := s.CreateEntry("user-1", "", "<<>><>ab cdef", "", nil, nil)
	assert.ErrorIs(t, err, ErrContentTooShort)
	assert.Empty(t, repo.created)
}

func TestCreateEntrySanitizesContent(t *testing.T) {
	s, _, _ := newJournalService()

	entry, err := s.CreateEntry("user-1", "<b>Title</b>", "a day of <quiet> reflection", "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bTitle/b", entry.Title)
	assert.Equal(t, "a day of quiet reflection", entry.Content)
}

func TestCreateEntryRejectsTooManyTags(t *testing.T) {
	s, _, _ := newJournalService()

	tags := make([]string, model.MaxEntryTags+1)
	for i := range tags {
		tags[i] = "tag"
	}

	_, err := s.CreateEntry("user-1", "", "plenty of content here", "", tags, nil)
	assert.ErrorIs(t, err, ErrTooManyTags)
}

func TestCreateEntryNormalizesTags(t *testing.T) {
	s, _, _ := newJournalService()

	entry, err := s.CreateEntry("user-1", "", "plenty of content here", "", []string{" Work ", "BURNOUT", ""}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StringList{"work", "burnout"}, entry.Tags)
}

func TestCreateEntryRejectsOutOfRangeMood(t *testing.T) {
	s, _, _ := newJournalService()

	for _, mood := range []int{0, 6, -1} {
		m := mood
		_, err := s.CreateEntry("user-1", "", "plenty of content here", "", nil, &m)
		assert.ErrorIs(t, err, ErrInvalidMood, "mood %d", mood)
	}
}

func TestCreateEntryDefaultsToTextType(t *testing.T) {
	s, _, _ := newJournalService()

	entry, err := s.CreateEntry("user-1", "", "plenty of content here", "something-else", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.EntryTypeText, entry.EntryType)

	entry, err = s.CreateEntry("user-1", "", "plenty of content here", model.EntryTypeVoice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.EntryTypeVoice, entry.EntryType)
}

func TestCreateEntryRateLimited(t *testing.T) {
	s, repo, _ := newJournalService()

	for i := 0; i < 5; i++ {
		_, err := s.CreateEntry("user-1", "", "plenty of content here", "", nil, nil)
		require.NoError(t, err, "save %d", i+1)
	}

	_, err := s.CreateEntry("user-1", "", "plenty of content here", "", nil, nil)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, repo.created, 5)

	// Another user is unaffected.
	_, err = s.CreateEntry("user-2", "", "plenty of content here", "", nil, nil)
	assert.NoError(t, err)
}

func TestCreateEntryInvalidInputDoesNotConsumeRateLimit(t *testing.T) {
	s, _, _ := newJournalService()

	// Burn validation failures well past the limit.
	for i := 0; i < 10; i++ {
		_, err := s.CreateEntry("user-1", "", "short", "", nil, nil)
		require.ErrorIs(t, err, ErrContentTooShort)
	}

	_, err := s.CreateEntry("user-1", "", "plenty of content here", "", nil, nil)
	assert.NoError(t, err, "rejected saves must not count against the limit")
}

func TestCheckinMoodValidatesRange(t *testing.T) {
	s, _, moodRepo := newJournalService()

	_, err := s.CheckinMood("user-1", 0, "")
	assert.ErrorIs(t, err, ErrInvalidMood)
	assert.Empty(t, moodRepo.upserts)
}

func TestCheckinMoodUpsertsToday(t *testing.T) {
	s, _, moodRepo := newJournalService()

	checkin, err := s.CheckinMood("user-1", 4, "good <day>")
	require.NoError(t, err)
	assert.Equal(t, 4, checkin.Mood)
	assert.Equal(t, "good day", checkin.Note)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, checkin.Day)
	require.Len(t, moodRepo.upserts, 1)
}

func TestEntriesClampsLimit(t *testing.T) {
	s, _, _ := newJournalService()

	long := strings.Repeat("a", 20)
	_, err := s.CreateEntry("user-1", "", long, "", nil, nil)
	require.NoError(t, err)

	for _, limit := range []int{-5, 0, 1000} {
		entries, err := s.Entries("user-1", limit)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}
