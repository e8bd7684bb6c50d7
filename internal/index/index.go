package index

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SearchOptions narrow a search. Zero values mean "no filter"; a nil
// MinTrustScore falls back to the configured default.
type SearchOptions struct {
	Registry      resource.RegistryType
	Capabilities  []resource.CapabilityCategory
	MinTrustScore *float64
	Limit         int
}

// Index is the in-memory store of all discovered resources plus two derived
// views. All mutation happens inside a discovery cycle or a single-resource
// refresh; readers may observe the pre- or post-cycle state but never a
// partially rebuilt one (derived views are rebuilt into fresh maps and
// swapped under the write lock).
type Index struct {
	mu           sync.RWMutex
	resources    map[string]resource.DiscoveredResource
	byRegistry   map[resource.RegistryType][]string
	byCapability map[resource.CapabilityCategory][]string

	store           storage.BlobStore
	logger          *slog.Logger
	defaultMinTrust float64
}

func New(store storage.BlobStore, defaultMinTrust float64, logger *slog.Logger) *Index {
	return &Index{
		resources:       make(map[string]resource.DiscoveredResource),
		byRegistry:      make(map[resource.RegistryType][]string),
		byCapability:    make(map[resource.CapabilityCategory][]string),
		store:           store,
		logger:          logger,
		defaultMinTrust: defaultMinTrust,
	}
}

// Merge adds or replaces resources in the authoritative map. Derived views
// are not touched; the orchestrator rebuilds them once the cycle completes.
func (ix *Index) Merge(resources []resource.DiscoveredResource) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, r := range resources {
		r.TrustScore = resource.ClampScore(r.TrustScore)
		ix.resources[r.ID] = r
	}
}

// Replace swaps a single resource in place, keyed by id.
func (ix *Index) Replace(r resource.DiscoveredResource) {
	r.TrustScore = resource.ClampScore(r.TrustScore)
	ix.mu.Lock()
	ix.resources[r.ID] = r
	ix.mu.Unlock()
}

// RemoveByRegistry drops every resource from one source, used when a cycle
// replaces a registry's result set wholesale.
func (ix *Index) RemoveByRegistry(reg resource.RegistryType) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for id, r := range ix.resources {
		if r.SourceRegistry == reg {
			delete(ix.resources, id)
		}
	}
}

// RebuildDerived recomputes both derived views from the full resource set and
// swaps them in atomically.
func (ix *Index) RebuildDerived() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	byRegistry := make(map[resource.RegistryType][]string)
	byCapability := make(map[resource.CapabilityCategory][]string)

	for id, r := range ix.resources {
		byRegistry[r.SourceRegistry] = append(byRegistry[r.SourceRegistry], id)
		for cat := range r.CategorySet() {
			byCapability[cat] = append(byCapability[cat], id)
		}
	}

	ix.byRegistry = byRegistry
	ix.byCapability = byCapability
}

// Len returns the number of indexed resources.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.resources)
}

// All returns a copy of every indexed resource.
func (ix *Index) All() []resource.DiscoveredResource {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]resource.DiscoveredResource, 0, len(ix.resources))
	for _, r := range ix.resources {
		out = append(out, r)
	}
	return out
}

// Get returns a resource by id.
func (ix *Index) Get(id string) (resource.DiscoveredResource, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	r, ok := ix.resources[id]
	return r, ok
}

// GetResource looks a resource up by its source-scoped compound key.
func (ix *Index) GetResource(qualifiedName string, reg resource.RegistryType) (resource.DiscoveredResource, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, id := range ix.byRegistry[reg] {
		if r, ok := ix.resources[id]; ok && r.QualifiedName == qualifiedName {
			return r, true
		}
	}
	// Fall back to a linear scan in case derived views are stale within a cycle.
	for _, r := range ix.resources {
		if r.SourceRegistry == reg && r.QualifiedName == qualifiedName {
			return r, true
		}
	}
	return resource.DiscoveredResource{}, false
}

// FindByCapability returns the resources registered under one capability
// category, ranked like search results.
func (ix *Index) FindByCapability(cat resource.CapabilityCategory) []resource.DiscoveredResource {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ids := ix.byCapability[cat]
	out := make([]resource.DiscoveredResource, 0, len(ids))
	for _, id := range ids {
		if r, ok := ix.resources[id]; ok {
			out = append(out, r)
		}
	}
	rankByRelevance(out)
	return out
}

// Search filters the full resource set: registry equality, trust floor,
// capability intersection, then case-insensitive substring match against
// display name, description, tags and contained tool names/descriptions.
// Survivors are ranked by trustScore x max(1, popularity) descending.
func (ix *Index) Search(query string, opts SearchOptions) []resource.DiscoveredResource {
	minTrust := ix.defaultMinTrust
	if opts.MinTrustScore != nil {
		minTrust = *opts.MinTrustScore
	}

	wanted := make(map[resource.CapabilityCategory]struct{}, len(opts.Capabilities))
	for _, c := range opts.Capabilities {
		wanted[c] = struct{}{}
	}

	needle := strings.ToLower(strings.TrimSpace(query))

	ix.mu.RLock()
	var out []resource.DiscoveredResource
	for _, r := range ix.resources {
		if opts.Registry != "" && r.SourceRegistry != opts.Registry {
			continue
		}
		if r.TrustScore < minTrust {
			continue
		}
		if len(wanted) > 0 && !intersects(r.CategorySet(), wanted) {
			continue
		}
		if needle != "" && !matchesText(&r, needle) {
			continue
		}
		out = append(out, r)
	}
	ix.mu.RUnlock()

	rankByRelevance(out)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func intersects(have map[resource.CapabilityCategory]struct{}, want map[resource.CapabilityCategory]struct{}) bool {
	for c := range want {
		if _, ok := have[c]; ok {
			return true
		}
	}
	return false
}

func matchesText(r *resource.DiscoveredResource, needle string) bool {
	if strings.Contains(strings.ToLower(r.DisplayName), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	for _, t := range r.Tools {
		if strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			return true
		}
	}
	return false
}

func rankByRelevance(resources []resource.DiscoveredResource) {
	sort.SliceStable(resources, func(i, j int) bool {
		return relevance(&resources[i]) > relevance(&resources[j])
	})
}

func relevance(r *resource.DiscoveredResource) float64 {
	pop := r.Popularity
	if pop < 1 {
		pop = 1
	}
	return r.TrustScore * float64(pop)
}

// SaveSnapshot persists the full resource set so the next start can serve
// stale results before the first cycle runs.
func (ix *Index) SaveSnapshot(ctx context.Context) error {
	data, err := json.Marshal(ix.All())
	if err != nil {
		return err
	}
	if err := ix.store.Set(ctx, storage.KeyResourceSnapshot, data); err != nil {
		ix.logger.Error("Failed to persist resource snapshot", "error", err)
		return err
	}
	ix.logger.Debug("Persisted resource snapshot", "resources", ix.Len())
	return nil
}

// LoadSnapshot seeds the index from the last persisted snapshot. A missing
// key or decode failure is a cold start, not an error worth failing over.
func (ix *Index) LoadSnapshot(ctx context.Context) {
	data, err := ix.store.Get(ctx, storage.KeyResourceSnapshot)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			ix.logger.Warn("Failed to read resource snapshot, starting cold", "error", err)
		}
		return
	}

	var resources []resource.DiscoveredResource
	if err := json.Unmarshal(data, &resources); err != nil {
		ix.logger.Warn("Failed to decode resource snapshot, starting cold", "error", err)
		return
	}

	ix.Merge(resources)
	ix.RebuildDerived()
	ix.logger.Info("Seeded index from snapshot", "resources", len(resources))
}
