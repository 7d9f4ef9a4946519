package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger. Production emits JSON; development emits text.
func New(level string, isProduction bool) *slog.Logger {
	return newLogger(os.Stdout, level, isProduction)
}

func newLogger(w io.Writer, level string, isProduction bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if isProduction {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
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
