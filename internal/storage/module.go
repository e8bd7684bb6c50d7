package storage

import (
	"context"
	"log/slog"

	"github.com/mcp-scout/mcp-scout/pkg/config"
	"go.uber.org/fx"
)

// NewBlobStore builds the SQLite-backed store from configuration and ties its
// lifetime to the fx application.
func NewBlobStore(lc fx.Lifecycle, cfg *config.ServerConfig, logger *slog.Logger) (BlobStore, error) {
	store, err := NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Debug("Closing blob store")
			return store.Close()
		},
	})

	return store, nil
}

var Module = fx.Module("storage",
	fx.Provide(NewBlobStore),
)
