package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
)

type fakeRecordingRepo struct {
	recordings map[string]*model.Recording
	createErr  error
}

func newFakeRecordingRepo() *fakeRecordingRepo {
	return &fakeRecordingRepo{recordings: make(map[string]*model.Recording)}
}

func (f *fakeRecordingRepo) Create(rec *model.Recording) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.recordings[rec.ID] = rec
	return nil
}

func (f *fakeRecordingRepo) ByID(userID, recordingID string) (*model.Recording, error) {
	rec, ok := f.recordings[recordingID]
	if !ok || rec.UserID != userID {
		return nil, repository.ErrRecordingNotFound
	}
	return rec, nil
}

func (f *fakeRecordingRepo) ByUser(userID string) ([]*model.Recording, error) {
	var recs []*model.Recording
	for _, rec := range f.recordings {
		if rec.UserID == userID {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (f *fakeRecordingRepo) LinkEntry(userID, recordingID, entryID string) error {
	rec, err := f.ByID(userID, recordingID)
	if err != nil {
		return err
	}
	rec.EntryID = &entryID
	return nil
}

func (f *fakeRecordingRepo) Delete(userID, recordingID string) error {
	_, err := f.ByID(userID, recordingID)
	if err != nil {
		return err
	}
	delete(f.recordings, recordingID)
	return nil
}

type fakeStorage struct {
	saved   map[string]bool
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string]bool)}
}

func (f *fakeStorage) Save(ctx context.Context, path string, file io.Reader) error {
	f.saved[path] = true
	return nil
}

func (f *fakeStorage) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	delete(f.saved, path)
	return nil
}

func (f *fakeStorage) PresignedURL(ctx context.Context, path string) (string, error) {
	return "https://storage.example.com/" + path + "?signed", nil
}

type recordingFixture struct {
	service *RecordingService
	repo    *fakeRecordingRepo
	storage *fakeStorage
	usage   *fakeUsageRepo
}

func newRecordingFixture(plan string, voiceUsed int) *recordingFixture {
	repo := newFakeRecordingRepo()
	store := newFakeStorage()
	usage := &fakeUsageRepo{counts: map[string]int{model.UsageFeatureVoiceRecording: voiceUsed}}
	subs := NewSubscriptionService(&fakeSubscriptionRepo{sub: activeSub(plan)}, catalog(), usage)

	return &recordingFixture{
		service: NewRecordingService(repo, subs, store),
		repo:    repo,
		storage: store,
		usage:   usage,
	}
}

func audioBody() io.Reader {
	return strings.NewReader("not really audio")
}

func TestSaveRecordingDeniedOnFreePlan(t *testing.T) {
	f := newRecordingFixture(model.PlanFree, 0)

	_, err := f.service.SaveRecording(context.Background(), "user-1", "memo.webm", "audio/webm", 128, 30, audioBody())
	assert.ErrorIs(t, err, ErrFeatureNotIncluded)
	assert.Empty(t, f.storage.saved)
}

func TestSaveRecordingDeniedWhenQuotaExhausted(t *testing.T) {
	// Pro fixture allows 30 recordings per month.
	f := newRecordingFixture(model.PlanPro, 30)

	_, err := f.service.SaveRecording(context.Background(), "user-1", "memo.webm", "audio/webm", 128, 30, audioBody())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestSaveRecordingDeniedWhenTooLong(t *testing.T) {
	f := newRecordingFixture(model.PlanPro, 0)

	_, err := f.service.SaveRecording(context.Background(), "user-1", "memo.webm", "audio/webm", 128, 301, audioBody())
	assert.ErrorIs(t, err, ErrRecordingTooLong)
}

func TestSaveRecordingRejectsUnknownMimeType(t *testing.T) {
	f := newRecordingFixture(model.PlanPro, 0)

	_, err := f.service.SaveRecording(context.Background(), "user-1", "memo.flac", "audio/flac", 128, 30, audioBody())
	assert.ErrorIs(t, err, ErrUnsupportedAudioType)
}

func TestSaveRecordingStoresAndTracks(t *testing.T) {
	f := newRecordingFixture(model.PlanPro, 0)

	rec, err := f.service.SaveRecording(context.Background(), "user-1", "My Memo.webm", "audio/webm", 2048, 45, audioBody())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.StoragePath, "recordings/user-1/"))
	assert.True(t, strings.HasSuffix(rec.Filename, ".webm"))
	assert.True(t, f.storage.saved[rec.StoragePath])
	assert.Equal(t, 45, f.usage.voiceSeconds)
}

func TestSaveRecordingCleansUpOnRowFailure(t *testing.T) {
	f := newRecordingFixture(model.PlanPro, 0)
	f.repo.createErr = errors.New("insert failed")

	_, err := f.service.SaveRecording(context.Background(), "user-1", "memo.webm", "audio/webm", 128, 30, audioBody())
	require.Error(t, err)
	assert.Empty(t, f.storage.saved, "orphaned object is removed after a failed insert")
	assert.Len(t, f.storage.deleted, 1)
}

func TestPlaybackURLScopedToOwner(t *testing.T) {
	f := newRecordingFixture(model.PlanPro, 0)

	rec, err := f.service.SaveRecording(context.Background(), "user-1", "memo.webm", "audio/webm", 128, 30, audioBody())
	require.NoError(t, err)

	url, err := f.service.PlaybackURL(context.Background(), "user-1", rec.ID)
	require.NoError(t, err)
	assert.Contains(t, url, rec.StoragePath)

	_, err = f.service.PlaybackURL(context.Background(), "someone-else", rec.ID)
	assert.ErrorIs(t, err, repository.ErrRecordingNotFound)
}

func TestDeleteRecordingRemovesRowAndObject(t *testing.T) {
	f := newRecordingFixture(model.PlanPro, 0)

	rec, err := f.service.SaveRecording(context.Background(), "user-1", "memo.webm", "audio/webm", 128, 30, audioBody())
	require.NoError(t, err)

	err = f.service.DeleteRecording(context.Background(), "user-1", rec.ID)
	require.NoError(t, err)
	assert.Empty(t, f.repo.recordings)
	assert.Empty(t, f.storage.saved)
}
