package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const defaultService = "docsentinel"

// NewJSONLogger builds the process-wide logger. Every record carries the
// service name so api and worker lines stay distinguishable once aggregated.
func NewJSONLogger(service, level string) *slog.Logger {
	return newJSONLogger(os.Stdout, service, level)
}

func newJSONLogger(w io.Writer, service, level string) *slog.Logger {
	if strings.TrimSpace(service) == "" {
		service = defaultService
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With(slog.String("service", service))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
