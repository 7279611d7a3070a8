package telemetry

import (
	"io"
	"log/slog"
	"strings"

	"github.com/gyaneshwarpardhi/indoornav/internal/config"
)

// NewLogger builds a slog.Logger writing to w in the configured format and level.
func NewLogger(w io.Writer, conf config.LoggingConf) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(conf.Level)}
	if strings.EqualFold(conf.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug|info|warn|error to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
