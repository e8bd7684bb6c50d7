package prefs

import (
	"context"
	"log/slog"

	"github.com/mcp-scout/mcp-scout/internal/storage"
	"go.uber.org/fx"
)

func newStore(lc fx.Lifecycle, blobs storage.BlobStore, logger *slog.Logger) *Store {
	store := NewStore(blobs, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			store.Load(ctx)
			return nil
		},
	})

	return store
}

var Module = fx.Module("prefs",
	fx.Provide(newStore),
)
