package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/haven-journal/haven/internal/api"
	"github.com/haven-journal/haven/internal/ctxkeys"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/service"
)

// maxRecordingBytes caps a single audio upload at 25MB.
const maxRecordingBytes = 25 << 20

type recordingHandler struct {
	recordingService *service.RecordingService
}

func NewRecordingHandler(recordingService *service.RecordingService) *recordingHandler {
	return &recordingHandler{recordingService: recordingService}
}

// Upload accepts a multipart form with an "audio" file part and a
// "duration_seconds" field.
func (h *recordingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxRecordingBytes)
	err := r.ParseMultipartForm(maxRecordingBytes)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid or oversized upload")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close upload", "error", closeErr)
		}
	}()

	duration, err := strconv.Atoi(r.FormValue("duration_seconds"))
	if err != nil || duration <= 0 {
		api.Error(w, http.StatusBadRequest, "duration_seconds is required")
		return
	}

	rec, err := h.recordingService.SaveRecording(
		r.Context(),
		user.ID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		duration,
		file,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFeatureNotIncluded):
			api.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrQuotaExceeded),
			errors.Is(err, service.ErrRecordingTooLong):
			api.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrUnsupportedAudioType):
			api.Error(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			slog.Error("recording upload failed", "error", err, "user_id", user.ID)
			api.Error(w, http.StatusInternalServerError, "failed to save recording")
		}
		return
	}

	api.JSON(w, http.StatusCreated, map[string]any{"recording": rec})
}

func (h *recordingHandler) Recordings(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	recs, err := h.recordingService.Recordings(user.ID)
	if err != nil {
		slog.Error("recording listing failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to list recordings")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"recordings": recs})
}

// PlaybackURL answers with a short-lived presigned URL for one recording.
func (h *recordingHandler) PlaybackURL(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	recordingID := r.PathValue("id")

	url, err := h.recordingService.PlaybackURL(r.Context(), user.ID, recordingID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordingNotFound) {
			api.Error(w, http.StatusNotFound, "recording not found")
			return
		}
		slog.Error("playback URL failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to create playback URL")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"url": url})
}

type attachRequest struct {
	EntryID string `json:"entry_id"`
}

func (h *recordingHandler) Attach(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	recordingID := r.PathValue("id")

	var req attachRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.EntryID == "" {
		api.Error(w, http.StatusBadRequest, "entry_id is required")
		return
	}

	err = h.recordingService.AttachToEntry(user.ID, recordingID, req.EntryID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordingNotFound) {
			api.Error(w, http.StatusNotFound, "recording not found")
			return
		}
		slog.Error("recording attach failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to attach recording")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"status": "attached"})
}

func (h *recordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	recordingID := r.PathValue("id")

	err := h.recordingService.DeleteRecording(r.Context(), user.ID, recordingID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordingNotFound) {
			api.Error(w, http.StatusNotFound, "recording not found")
			return
		}
		slog.Error("recording deletion failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to delete recording")
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
