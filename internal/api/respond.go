// Package api holds the JSON request/response helpers shared by all handlers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// Error writes a JSON error envelope with the given status code.
// The message is user-facing; internal detail belongs in the log line at
// the call site, not here.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// maxBodyBytes caps request bodies; journal content tops out at 10k
// characters so 1MB leaves generous headroom for any JSON request.
const maxBodyBytes = 1 << 20

// Decode reads the request body into v, rejecting unknown fields and
// oversized bodies.
func Decode(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}

	return nil
}
