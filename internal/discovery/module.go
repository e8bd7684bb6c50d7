package discovery

import (
	"context"
	"log/slog"

	"github.com/mcp-scout/mcp-scout/internal/index"
	"github.com/mcp-scout/mcp-scout/internal/registry"
	"github.com/mcp-scout/mcp-scout/pkg/config"
	"go.uber.org/fx"
)

type orchestratorParams struct {
	fx.In

	Adapters []registry.Adapter `group:"registry_adapters"`
	Index    *index.Index
	Config   config.DiscoveryConfig
	Logger   *slog.Logger
}

func newOrchestrator(p orchestratorParams) *Orchestrator {
	return NewOrchestrator(p.Adapters, p.Index, p.Config.Interval, p.Logger)
}

// registerHooks seeds the index from the last snapshot, kicks off an initial
// cycle in the background and starts the periodic loop.
func registerHooks(lc fx.Lifecycle, o *Orchestrator, ix *index.Index, logger *slog.Logger) {
	loopCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Stale results beat no results: search works before the first cycle.
			ix.LoadSnapshot(ctx)

			go func() {
				if err := o.DiscoverNow(loopCtx); err != nil {
					logger.Warn("Initial discovery did not complete", "error", err)
				}
			}()
			go o.Run(loopCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Module("discovery",
	fx.Provide(newOrchestrator),
	fx.Invoke(registerHooks),
)
