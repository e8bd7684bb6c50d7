package resource

import "time"

// UserResourcePreferences is the persisted per-user preference state that
// feeds the matcher's boosting and filtering.
type UserResourcePreferences struct {
	FavoriteResources   map[string]struct{}       `json:"favorite_resources"`
	BlockedResources    map[string]struct{}       `json:"blocked_resources"`
	PreferredRegistries map[RegistryType]struct{} `json:"preferred_registries"`
}

// NewUserResourcePreferences returns an empty preference set with all maps allocated.
func NewUserResourcePreferences() *UserResourcePreferences {
	return &UserResourcePreferences{
		FavoriteResources:   make(map[string]struct{}),
		BlockedResources:    make(map[string]struct{}),
		PreferredRegistries: make(map[RegistryType]struct{}),
	}
}

// ResourceUsageStats tracks how often one resource was used and whether it
// helped. Created lazily on first use, never deleted automatically.
type ResourceUsageStats struct {
	UsageCount   int        `json:"usage_count"`
	HelpfulCount int        `json:"helpful_count"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
}

// DiscoveryStats is in-memory run telemetry, reset only by process restart.
type DiscoveryStats struct {
	TotalResources        int
	LastDiscoveryDate     *time.Time
	LastDiscoveryDuration time.Duration
	DiscoveryCount        int
}
