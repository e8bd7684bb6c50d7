package logger

import (
	"log/slog"
	"os"

	"github.com/mcp-scout/mcp-scout/pkg/config"
	"go.uber.org/fx"
)

// NewRecentLogBuffer holds the last log lines for the diagnostics surface.
func NewRecentLogBuffer() *RingBuffer {
	return NewRingBuffer(500)
}

// NewSlogLogger builds the process logger from configuration. Records are
// teed into the ring buffer so diagnostics can show recent activity.
func NewSlogLogger(cfg *config.ServerConfig, buffer *RingBuffer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(newBufferingHandler(handler, buffer, opts))
}

var Module = fx.Module("logger",
	fx.Provide(NewRecentLogBuffer),
	fx.Provide(NewSlogLogger),
)
