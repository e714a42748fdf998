// Package logger configures the application's structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup returns a JSON slog.Logger writing to w.
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

// OpenFile returns a logger appending to the log file at path, plus a
// close func. Interactive commands log to a file so the terminal stays
// free for the UI; on open failure logging is discarded rather than
// breaking the command.
func OpenFile(path string) (*slog.Logger, func() error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return Setup(io.Discard), func() error { return nil }
	}
	return Setup(f), f.Close
}
