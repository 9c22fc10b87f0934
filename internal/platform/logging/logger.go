// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pscheid92/dappboard/internal/platform/correlation"
)

// ParseLevel maps "debug", "info", "warn" and "error" onto slog levels.
// Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds a correlation-aware handler writing to w. format is "json" or "text".
func NewHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return correlation.NewHandler(handler)
}

// InitLogger installs a stdout logger as the slog default and returns it.
func InitLogger(level, format string) *slog.Logger {
	logger := slog.New(NewHandler(os.Stdout, level, format))
	slog.SetDefault(logger)
	return logger
}
