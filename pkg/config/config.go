package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type DiscoveryConfig struct {
	Interval                time.Duration `mapstructure:"interval"`
	MaxResourcesPerRegistry int           `mapstructure:"max_resources_per_registry"`
	MinTrustScore           float64       `mapstructure:"min_trust_score"`
	RequestTimeout          time.Duration `mapstructure:"request_timeout"`
}

type MatchingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	MinConfidence  float64 `mapstructure:"min_confidence"`
	MaxSuggestions int     `mapstructure:"max_suggestions"`
	NLPEnabled     bool    `mapstructure:"nlp_enabled"`
	HistoryLimit   int     `mapstructure:"history_limit"`
}

type SmitheryConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	VerifiedOnly bool   `mapstructure:"verified_only"`
	PageSize     int    `mapstructure:"page_size"`
}

type PulseConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type Context7Config struct {
	APIKey string `mapstructure:"api_key"`
}

type AwesomeListConfig struct {
	URL string `mapstructure:"url"`
}

type RegistriesConfig struct {
	Smithery    SmitheryConfig    `mapstructure:"smithery"`
	Pulse       PulseConfig       `mapstructure:"pulse"`
	Context7    Context7Config    `mapstructure:"context7"`
	AwesomeList AwesomeListConfig `mapstructure:"awesome_list"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	LogLevel   string           `mapstructure:"log_level"`
	LogFormat  string           `mapstructure:"log_format"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Registries RegistriesConfig `mapstructure:"registries"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		LogLevel:  "info",
		LogFormat: "json",
		Discovery: DiscoveryConfig{
			Interval:                1 * time.Hour,
			MaxResourcesPerRegistry: 100,
			MinTrustScore:           0.3,
			RequestTimeout:          15 * time.Second,
		},
		Matching: MatchingConfig{
			Enabled:        true,
			MinConfidence:  0.5,
			MaxSuggestions: 5,
			NLPEnabled:     true,
			HistoryLimit:   50,
		},
		Registries: RegistriesConfig{
			Smithery: SmitheryConfig{
				BaseURL:      "https://registry.smithery.ai",
				VerifiedOnly: true,
				PageSize:     50,
			},
			Pulse: PulseConfig{
				BaseURL: "https://api.pulsemcp.com/v0beta",
			},
			AwesomeList: AwesomeListConfig{
				URL: "https://raw.githubusercontent.com/punkpeye/awesome-mcp-servers/main/README.md",
			},
		},
		Storage: StorageConfig{
			Path: "mcp-scout.db",
		},
	}
}

func LoadConfig() (*ServerConfig, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/mcp-scout/")
	viper.AddConfigPath("$HOME/.mcp-scout/")

	viper.SetEnvPrefix("MCP_SCOUT")
	viper.AutomaticEnv()

	viper.SetDefault("log_level", config.LogLevel)
	viper.SetDefault("log_format", config.LogFormat)

	// Discovery defaults
	viper.SetDefault("discovery.interval", config.Discovery.Interval)
	viper.SetDefault("discovery.max_resources_per_registry", config.Discovery.MaxResourcesPerRegistry)
	viper.SetDefault("discovery.min_trust_score", config.Discovery.MinTrustScore)
	viper.SetDefault("discovery.request_timeout", config.Discovery.RequestTimeout)

	// Matching defaults
	viper.SetDefault("matching.enabled", config.Matching.Enabled)
	viper.SetDefault("matching.min_confidence", config.Matching.MinConfidence)
	viper.SetDefault("matching.max_suggestions", config.Matching.MaxSuggestions)
	viper.SetDefault("matching.nlp_enabled", config.Matching.NLPEnabled)
	viper.SetDefault("matching.history_limit", config.Matching.HistoryLimit)

	// Registry defaults
	viper.SetDefault("registries.smithery.base_url", config.Registries.Smithery.BaseURL)
	viper.SetDefault("registries.smithery.api_key", config.Registries.Smithery.APIKey)
	viper.SetDefault("registries.smithery.verified_only", config.Registries.Smithery.VerifiedOnly)
	viper.SetDefault("registries.smithery.page_size", config.Registries.Smithery.PageSize)
	viper.SetDefault("registries.pulse.base_url", config.Registries.Pulse.BaseURL)
	viper.SetDefault("registries.context7.api_key", config.Registries.Context7.APIKey)
	viper.SetDefault("registries.awesome_list.url", config.Registries.AwesomeList.URL)

	// Storage defaults
	viper.SetDefault("storage.path", config.Storage.Path)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validateConfig(config *ServerConfig) error {
	if config.Discovery.Interval <= 0 {
		return fmt.Errorf("the discovery interval must be positive")
	}

	if config.Discovery.MaxResourcesPerRegistry <= 0 {
		return fmt.Errorf("the per-registry resource budget must be positive")
	}

	if config.Discovery.MinTrustScore < 0 || config.Discovery.MinTrustScore > 1 {
		return fmt.Errorf("the minimum trust score must be between 0 and 1")
	}

	if config.Discovery.RequestTimeout <= 0 {
		return fmt.Errorf("the registry request timeout must be positive")
	}

	if config.Matching.MinConfidence < 0 || config.Matching.MinConfidence > 1 {
		return fmt.Errorf("the minimum match confidence must be between 0 and 1")
	}

	if config.Matching.MaxSuggestions <= 0 {
		return fmt.Errorf("the maximum suggestion count must be positive")
	}

	if config.Matching.HistoryLimit <= 0 {
		return fmt.Errorf("the match history limit must be positive")
	}

	if config.Storage.Path == "" {
		return fmt.Errorf("the storage path cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validLogFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validLogFormats[config.LogFormat] {
		return fmt.Errorf("invalid log format: %s", config.LogFormat)
	}

	return nil
}
