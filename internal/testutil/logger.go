package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// LogRecorder keeps the records written by a CaptureLogger. Safe for concurrent use.
type LogRecorder struct {
	mu      sync.Mutex
	records []map[string]any
}

// CaptureLogger returns a debug-level logger whose records can be inspected
func CaptureLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(slog.NewJSONHandler(rec, &slog.HandlerOptions{Level: slog.LevelDebug})), rec
}

// Write receives one JSON record per call from the slog handler
func (r *LogRecorder) Write(p []byte) (int, error) {
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &record); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return len(p), nil
}

// Records returns every record with the given message
func (r *LogRecorder) Records(msg string) []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []map[string]any
	for _, rec := range r.records {
		if rec[slog.MessageKey] == msg {
			out = append(out, rec)
		}
	}
	return out
}

// Count returns how many records have the given message
func (r *LogRecorder) Count(msg string) int {
	return len(r.Records(msg))
}
