package config

import "go.uber.org/fx"

// Module derives the smaller per-consumer configs from the full ServerConfig,
// which the application supplies after loading it.
var Module = fx.Module("config",
	fx.Provide(func(cfg *ServerConfig) DiscoveryConfig { return cfg.Discovery }),
	fx.Provide(func(cfg *ServerConfig) MatchingConfig { return cfg.Matching }),
	fx.Provide(func(cfg *ServerConfig) RegistriesConfig { return cfg.Registries }),
)
