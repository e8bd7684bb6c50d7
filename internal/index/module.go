package index

import (
	"log/slog"

	"github.com/mcp-scout/mcp-scout/internal/storage"
	"github.com/mcp-scout/mcp-scout/pkg/config"
	"go.uber.org/fx"
)

func NewIndex(store storage.BlobStore, cfg config.DiscoveryConfig, logger *slog.Logger) *Index {
	return New(store, cfg.MinTrustScore, logger)
}

var Module = fx.Module("index",
	fx.Provide(NewIndex),
)
