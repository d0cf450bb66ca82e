package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/storage"
)

var (
	ErrQuotaExceeded        = errors.New("monthly voice recording quota exceeded")
	ErrRecordingTooLong     = errors.New("recording exceeds the plan's maximum duration")
	ErrUnsupportedAudioType = errors.New("unsupported audio type")
)

// allowedAudioTypes are the upload MIME types the recorder produces.
var allowedAudioTypes = map[string]string{
	"audio/webm": ".webm",
	"audio/mp4":  ".m4a",
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
}

// RecordingService handles voice-journal uploads. Every save checks the
// plan quota first; quota failures deny the upload (the check fails
// closed, like the feature gate).
type RecordingService struct {
	recordingRepository repository.RecordingRepository
	subscriptionService *SubscriptionService
	storage             storage.Storage
}

func NewRecordingService(
	recordingRepository repository.RecordingRepository,
	subscriptionService *SubscriptionService,
	store storage.Storage,
) *RecordingService {
	return &RecordingService{
		recordingRepository: recordingRepository,
		subscriptionService: subscriptionService,
		storage:             store,
	}
}

// SaveRecording checks the voice quota, uploads the audio object, and
// records the row. Usage is tracked after a successful save.
func (s *RecordingService) SaveRecording(ctx context.Context, userID, originalName, mimeType string, size int64, durationSeconds int, audio io.Reader) (*model.Recording, error) {
	if !s.subscriptionService.CanAccessFeature(userID, model.FeatureVoiceJournaling) {
		return nil, ErrFeatureNotIncluded
	}

	quota, err := s.subscriptionService.VoiceQuotaFor(userID)
	if err != nil {
		// Fail closed: an unresolvable quota denies the upload.
		return nil, fmt.Errorf("failed to check voice quota: %w", err)
	}

	if !quota.CanRecord {
		return nil, ErrQuotaExceeded
	}

	if durationSeconds > quota.MaxDurationSeconds {
		return nil, ErrRecordingTooLong
	}

	ext, ok := allowedAudioTypes[strings.ToLower(mimeType)]
	if !ok {
		return nil, ErrUnsupportedAudioType
	}

	id := uuid.New().String()
	filename := id + ext
	storagePath := path.Join("recordings", userID, filename)

	err = s.storage.Save(ctx, storagePath, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to store recording: %w", err)
	}

	rec := &model.Recording{
		ID:              id,
		UserID:          userID,
		Filename:        filename,
		OriginalName:    originalName,
		MimeType:        mimeType,
		Size:            size,
		DurationSeconds: durationSeconds,
		StoragePath:     storagePath,
		CreatedAt:       time.Now(),
	}

	err = s.recordingRepository.Create(rec)
	if err != nil {
		// Orphaned object cleanup is best-effort.
		_ = s.storage.Delete(ctx, storagePath)
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}

	s.subscriptionService.TrackVoiceSeconds(userID, durationSeconds)

	return rec, nil
}

// AttachToEntry links an uploaded recording to a journal entry.
func (s *RecordingService) AttachToEntry(userID, recordingID, entryID string) error {
	return s.recordingRepository.LinkEntry(userID, recordingID, entryID)
}

func (s *RecordingService) Recordings(userID string) ([]*model.Recording, error) {
	recs, err := s.recordingRepository.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}

	return recs, nil
}

// PlaybackURL returns a short-lived presigned URL for a recording the
// user owns.
func (s *RecordingService) PlaybackURL(ctx context.Context, userID, recordingID string) (string, error) {
	rec, err := s.recordingRepository.ByID(userID, recordingID)
	if err != nil {
		return "", err
	}

	url, err := s.storage.PresignedURL(ctx, rec.StoragePath)
	if err != nil {
		return "", fmt.Errorf("failed to create playback URL: %w", err)
	}

	return url, nil
}

// DeleteRecording removes the row and the stored object.
func (s *RecordingService) DeleteRecording(ctx context.Context, userID, recordingID string) error {
	rec, err := s.recordingRepository.ByID(userID, recordingID)
	if err != nil {
		return err
	}

	err = s.recordingRepository.Delete(userID, recordingID)
	if err != nil {
		return err
	}

	err = s.storage.Delete(ctx, rec.StoragePath)
	if err != nil {
		return fmt.Errorf("row deleted but object removal failed: %w", err)
	}

	return nil
}
