package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process-wide slog logger and installs it as the default.
// level comes straight from MEALIO_LOG_LEVEL: "debug", "info", "warn", or
// "error", case-insensitive, falling back to info for anything else.
func Setup(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
