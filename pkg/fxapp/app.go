package fxapp

import (
	"log"

	"github.com/mcp-scout/mcp-scout/internal/discovery"
	"github.com/mcp-scout/mcp-scout/internal/index"
	"github.com/mcp-scout/mcp-scout/internal/matcher"
	"github.com/mcp-scout/mcp-scout/internal/nlp"
	"github.com/mcp-scout/mcp-scout/internal/prefs"
	"github.com/mcp-scout/mcp-scout/internal/registry"
	"github.com/mcp-scout/mcp-scout/internal/server"
	"github.com/mcp-scout/mcp-scout/internal/storage"
	"github.com/mcp-scout/mcp-scout/pkg/config"
	"github.com/mcp-scout/mcp-scout/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func New() *fx.App {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Default to a verbose logger for debug level
	var fxLogger fx.Option = fx.WithLogger(
		func() fxevent.Logger {
			return &fxevent.ConsoleLogger{W: log.Writer()}
		},
	)

	if cfg.LogLevel != "debug" {
		fxLogger = fx.NopLogger
	}

	return fx.New(
		fxLogger,
		fx.Supply(cfg),
		config.Module,
		logger.Module,
		storage.Module,
		nlp.Module,
		index.Module,
		registry.Module,
		discovery.Module,
		prefs.Module,
		matcher.Module,
		server.Module,
	)
}
