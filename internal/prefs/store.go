package prefs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store holds the learned signals that feed the matcher's boosting step:
// per-resource usage stats and the user's favorite/blocked sets. Writers
// serialize their read-modify-write under one mutex so concurrent calls for
// the same resource never lose updates.
type Store struct {
	mu          sync.RWMutex
	preferences *resource.UserResourcePreferences
	usage       map[string]*resource.ResourceUsageStats

	blobs  storage.BlobStore
	logger *slog.Logger
}

func NewStore(blobs storage.BlobStore, logger *slog.Logger) *Store {
	return &Store{
		preferences: resource.NewUserResourcePreferences(),
		usage:       make(map[string]*resource.ResourceUsageStats),
		blobs:       blobs,
		logger:      logger,
	}
}

// Load seeds the in-memory state from persistence. Missing keys are a normal
// first run; decode failures degrade to empty state.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, err := s.blobs.Get(ctx, storage.KeyUserPreferences); err == nil {
		prefs := resource.NewUserResourcePreferences()
		if err := json.Unmarshal(data, prefs); err != nil {
			s.logger.Warn("Failed to decode user preferences", "error", err)
		} else {
			s.preferences = prefs
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("Failed to read user preferences", "error", err)
	}

	if data, err := s.blobs.Get(ctx, storage.KeyUsageStats); err == nil {
		usage := make(map[string]*resource.ResourceUsageStats)
		if err := json.Unmarshal(data, &usage); err != nil {
			s.logger.Warn("Failed to decode usage stats", "error", err)
		} else {
			s.usage = usage
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("Failed to read usage stats", "error", err)
	}
}

// RecordUsage increments a resource's usage counters and persists. The stats
// entry is created lazily on first use.
func (s *Store) RecordUsage(ctx context.Context, resourceID string, wasHelpful bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.usage[resourceID]
	if !ok {
		stats = &resource.ResourceUsageStats{}
		s.usage[resourceID] = stats
	}
	stats.UsageCount++
	if wasHelpful {
		stats.HelpfulCount++
	}
	now := time.Now()
	stats.LastUsed = &now

	s.persistUsageLocked(ctx)
}

// RecordPreference adds or removes a resource from the favorites set.
func (s *Store) RecordPreference(ctx context.Context, resourceID string, isFavorite bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isFavorite {
		s.preferences.FavoriteResources[resourceID] = struct{}{}
	} else {
		delete(s.preferences.FavoriteResources, resourceID)
	}

	s.persistPreferencesLocked(ctx)
}

// SetBlocked adds or removes a resource from the blocked set; blocked
// resources never surface as suggestions.
func (s *Store) SetBlocked(ctx context.Context, resourceID string, blocked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if blocked {
		s.preferences.BlockedResources[resourceID] = struct{}{}
		delete(s.preferences.FavoriteResources, resourceID)
	} else {
		delete(s.preferences.BlockedResources, resourceID)
	}

	s.persistPreferencesLocked(ctx)
}

// SetPreferredRegistry marks a registry as preferred.
func (s *Store) SetPreferredRegistry(ctx context.Context, reg resource.RegistryType, preferred bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if preferred {
		s.preferences.PreferredRegistries[reg] = struct{}{}
	} else {
		delete(s.preferences.PreferredRegistries, reg)
	}

	s.persistPreferencesLocked(ctx)
}

// IsFavorite reports whether the resource is in the favorites set.
func (s *Store) IsFavorite(resourceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.preferences.FavoriteResources[resourceID]
	return ok
}

// IsBlocked reports whether the resource is in the blocked set.
func (s *Store) IsBlocked(resourceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.preferences.BlockedResources[resourceID]
	return ok
}

// UsageStats returns a copy of one resource's usage stats.
func (s *Store) UsageStats(resourceID string) (resource.ResourceUsageStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.usage[resourceID]
	if !ok {
		return resource.ResourceUsageStats{}, false
	}
	return *stats, true
}

// Preferences returns a deep copy of the preference state.
func (s *Store) Preferences() resource.UserResourcePreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := resource.NewUserResourcePreferences()
	for id := range s.preferences.FavoriteResources {
		out.FavoriteResources[id] = struct{}{}
	}
	for id := range s.preferences.BlockedResources {
		out.BlockedResources[id] = struct{}{}
	}
	for reg := range s.preferences.PreferredRegistries {
		out.PreferredRegistries[reg] = struct{}{}
	}
	return *out
}

// persistPreferencesLocked writes preferences through; a write failure is
// logged and the in-memory state keeps operating.
func (s *Store) persistPreferencesLocked(ctx context.Context) {
	data, err := json.Marshal(s.preferences)
	if err != nil {
		s.logger.Error("Failed to encode user preferences", "error", err)
		return
	}
	if err := s.blobs.Set(ctx, storage.KeyUserPreferences, data); err != nil {
		s.logger.Error("Failed to persist user preferences", "error", err)
	}
}

func (s *Store) persistUsageLocked(ctx context.Context) {
	data, err := json.Marshal(s.usage)
	if err != nil {
		s.logger.Error("Failed to encode usage stats", "error", err)
		return
	}
	if err := s.blobs.Set(ctx, storage.KeyUsageStats, data); err != nil {
		s.logger.Error("Failed to persist usage stats", "error", err)
	}
}
