package registry

import (
	"log/slog"

	"github.com/mcp-scout/mcp-scout/pkg/config"
	"go.uber.org/fx"
)

// Module provides every configured adapter as part of the "registry_adapters"
// value group; the orchestrator consumes the whole group.
var Module = fx.Module("registry",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.ServerConfig, logger *slog.Logger) Adapter {
				return NewSmitheryAdapter(cfg.Registries.Smithery, cfg.Discovery.MaxResourcesPerRegistry, cfg.Discovery.RequestTimeout, logger)
			},
			fx.ResultTags(`group:"registry_adapters"`),
		),
		fx.Annotate(
			func(cfg *config.ServerConfig, logger *slog.Logger) Adapter {
				return NewPulseAdapter(cfg.Registries.Pulse, cfg.Discovery.MaxResourcesPerRegistry, cfg.Discovery.RequestTimeout, logger)
			},
			fx.ResultTags(`group:"registry_adapters"`),
		),
		fx.Annotate(
			func(cfg *config.ServerConfig, logger *slog.Logger) Adapter {
				return NewContext7Adapter(cfg.Registries.Context7, logger)
			},
			fx.ResultTags(`group:"registry_adapters"`),
		),
		fx.Annotate(
			func(cfg *config.ServerConfig, logger *slog.Logger) Adapter {
				return NewAwesomeListAdapter(cfg.Registries.AwesomeList, cfg.Discovery.MaxResourcesPerRegistry, cfg.Discovery.RequestTimeout, logger)
			},
			fx.ResultTags(`group:"registry_adapters"`),
		),
	),
)
