package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcp-scout/mcp-scout/internal/index"
	"github.com/mcp-scout/mcp-scout/internal/registry"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"golang.org/x/sync/errgroup"
)

// ErrDiscoveryInFlight signals that a cycle was skipped because one is
// already running. Callers treat it as a benign no-op, not a failure.
var ErrDiscoveryInFlight = errors.New("discovery cycle already in flight")

// Orchestrator fans out to every registry adapter concurrently, merges
// results into the index, rebuilds derived views atomically and persists a
// snapshot. A single in-flight guard serializes cycles; the periodic timer
// and manual triggers share it.
type Orchestrator struct {
	adapters []registry.Adapter
	index    *index.Index
	logger   *slog.Logger
	interval time.Duration

	inFlight atomic.Bool

	mu        sync.RWMutex
	stats     resource.DiscoveryStats
	lastError string
}

func NewOrchestrator(adapters []registry.Adapter, ix *index.Index, interval time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		adapters: adapters,
		index:    ix,
		logger:   logger,
		interval: interval,
	}
}

// DiscoverNow runs one discovery cycle. A second concurrent call while one
// is running is a logged no-op.
func (o *Orchestrator) DiscoverNow(ctx context.Context) error {
	if !o.inFlight.CompareAndSwap(false, true) {
		o.logger.Info("Discovery already in flight, skipping")
		return ErrDiscoveryInFlight
	}
	defer o.inFlight.Store(false)

	started := time.Now()
	o.setLastError("")
	o.logger.Info("Starting discovery cycle", "registries", len(o.adapters))

	var failures []string
	var failMu sync.Mutex

	// Adapters run in parallel; a failing adapter contributes zero resources
	// and never cancels its siblings, so every group func returns nil.
	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range o.adapters {
		g.Go(func() error {
			resources, err := adapter.Fetch(gctx)
			if err != nil {
				failMu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", adapter.Type(), err))
				failMu.Unlock()
			}
			if len(resources) > 0 {
				// Each cycle replaces the source's previous result set
				// wholesale; a failed fetch keeps the stale entries instead.
				o.index.RemoveByRegistry(adapter.Type())
				o.index.Merge(resources)
				o.logger.Debug("Merged registry results",
					"registry", adapter.Type(),
					"resources", len(resources))
			}
			return nil
		})
	}
	_ = g.Wait()

	o.index.RebuildDerived()

	if err := o.index.SaveSnapshot(ctx); err != nil {
		// In-memory state stays usable; the next cycle retries persistence.
		o.logger.Warn("Snapshot persistence failed", "error", err)
	}

	duration := time.Since(started)
	now := time.Now()
	o.mu.Lock()
	o.stats.DiscoveryCount++
	o.stats.TotalResources = o.index.Len()
	o.stats.LastDiscoveryDate = &now
	o.stats.LastDiscoveryDuration = duration
	if len(failures) > 0 {
		o.lastError = strings.Join(failures, "; ")
	}
	o.mu.Unlock()

	o.logger.Info("Discovery cycle complete",
		"resources", o.index.Len(),
		"duration", duration,
		"failed_registries", len(failures))
	return nil
}

// RefreshResource re-fetches a single resource through its own source
// adapter and replaces it in the index in place. Adapters without point
// lookup support make this a no-op.
func (o *Orchestrator) RefreshResource(ctx context.Context, id string) error {
	current, ok := o.index.Get(id)
	if !ok {
		return fmt.Errorf("resource %s not found", id)
	}

	adapter := o.adapterFor(current.SourceRegistry)
	if adapter == nil {
		return fmt.Errorf("no adapter for registry %s", current.SourceRegistry)
	}

	refresher, ok := adapter.(registry.Refresher)
	if !ok {
		o.logger.Debug("Registry does not support point lookups, skipping refresh",
			"registry", current.SourceRegistry)
		return nil
	}

	fresh, err := refresher.FetchOne(ctx, current.QualifiedName)
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", current.QualifiedName, err)
	}

	// Keep the existing id so favorites and usage stats stay attached.
	fresh.ID = current.ID
	o.index.Replace(*fresh)
	o.index.RebuildDerived()

	o.logger.Info("Refreshed resource", "qualified_name", fresh.QualifiedName)
	return nil
}

// Run is the periodic trigger loop. It checks for cancellation both before
// sleeping and before triggering, and exits cleanly without re-scheduling.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Discovery loop stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if err := o.DiscoverNow(ctx); err != nil && !errors.Is(err, ErrDiscoveryInFlight) {
				o.logger.Error("Periodic discovery failed", "error", err)
			}
		}
	}
}

// Stats returns a copy of the run telemetry.
func (o *Orchestrator) Stats() resource.DiscoveryStats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stats
}

// LastError returns the failure summary of the most recent cycle, empty when
// every adapter succeeded.
func (o *Orchestrator) LastError() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastError
}

func (o *Orchestrator) setLastError(msg string) {
	o.mu.Lock()
	o.lastError = msg
	o.mu.Unlock()
}

func (o *Orchestrator) adapterFor(reg resource.RegistryType) registry.Adapter {
	for _, a := range o.adapters {
		if a.Type() == reg {
			return a
		}
	}
	return nil
}
