package prefs_test

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcp-scout/mcp-scout/internal/prefs"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeBlobStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{data: make(map[string][]byte)}
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeBlobStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeBlobStore) Close() error { return nil }

var _ = Describe("Store", func() {
	var (
		blobs *fakeBlobStore
		store *prefs.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		blobs = newFakeBlobStore()
		store = prefs.NewStore(blobs, slog.Default())
		ctx = context.Background()
	})

	Describe("RecordUsage", func() {
		It("should create stats lazily on first use", func() {
			_, ok := store.UsageStats("r1")
			Expect(ok).To(BeFalse())

			store.RecordUsage(ctx, "r1", true)

			stats, ok := store.UsageStats("r1")
			Expect(ok).To(BeTrue())
			Expect(stats.UsageCount).To(Equal(1))
			Expect(stats.HelpfulCount).To(Equal(1))
			Expect(stats.LastUsed).NotTo(BeNil())
		})

		It("should only count helpful uses as helpful", func() {
			store.RecordUsage(ctx, "r1", true)
			store.RecordUsage(ctx, "r1", false)
			store.RecordUsage(ctx, "r1", false)

			stats, _ := store.UsageStats("r1")
			Expect(stats.UsageCount).To(Equal(3))
			Expect(stats.HelpfulCount).To(Equal(1))
		})

		It("should not lose updates under concurrent recording", func() {
			var wg sync.WaitGroup
			for range 50 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					store.RecordUsage(ctx, "r1", false)
				}()
			}
			wg.Wait()

			stats, _ := store.UsageStats("r1")
			Expect(stats.UsageCount).To(Equal(50))
		})
	})

	Describe("Favorites and blocking", func() {
		It("should toggle favorites", func() {
			store.RecordPreference(ctx, "r1", true)
			Expect(store.IsFavorite("r1")).To(BeTrue())

			store.RecordPreference(ctx, "r1", false)
			Expect(store.IsFavorite("r1")).To(BeFalse())
		})

		It("should remove a resource from favorites when it gets blocked", func() {
			store.RecordPreference(ctx, "r1", true)
			store.SetBlocked(ctx, "r1", true)

			Expect(store.IsBlocked("r1")).To(BeTrue())
			Expect(store.IsFavorite("r1")).To(BeFalse())
		})

		It("should unblock without restoring the favorite", func() {
			store.RecordPreference(ctx, "r1", true)
			store.SetBlocked(ctx, "r1", true)
			store.SetBlocked(ctx, "r1", false)

			Expect(store.IsBlocked("r1")).To(BeFalse())
			Expect(store.IsFavorite("r1")).To(BeFalse())
		})
	})

	Describe("Preferred registries", func() {
		It("should track the preferred set", func() {
			store.SetPreferredRegistry(ctx, resource.RegistrySmithery, true)

			p := store.Preferences()
			Expect(p.PreferredRegistries).To(HaveKey(resource.RegistrySmithery))

			store.SetPreferredRegistry(ctx, resource.RegistrySmithery, false)
			Expect(store.Preferences().PreferredRegistries).To(BeEmpty())
		})
	})

	Describe("Persistence", func() {
		It("should survive a restart via the blob store", func() {
			store.RecordUsage(ctx, "r1", true)
			store.RecordUsage(ctx, "r1", false)
			store.RecordPreference(ctx, "fav", true)
			store.SetBlocked(ctx, "bad", true)

			fresh := prefs.NewStore(blobs, slog.Default())
			fresh.Load(ctx)

			stats, ok := fresh.UsageStats("r1")
			Expect(ok).To(BeTrue())
			Expect(stats.UsageCount).To(Equal(2))
			Expect(stats.HelpfulCount).To(Equal(1))
			Expect(fresh.IsFavorite("fav")).To(BeTrue())
			Expect(fresh.IsBlocked("bad")).To(BeTrue())
		})

		It("should treat missing keys as a normal first run", func() {
			store.Load(ctx)
			Expect(store.Preferences().FavoriteResources).To(BeEmpty())
		})

		It("should degrade to empty state on corrupt data", func() {
			Expect(blobs.Set(ctx, storage.KeyUserPreferences, []byte("not json"))).To(Succeed())
			Expect(blobs.Set(ctx, storage.KeyUsageStats, []byte("not json"))).To(Succeed())

			store.Load(ctx)

			Expect(store.Preferences().FavoriteResources).To(BeEmpty())
			_, ok := store.UsageStats("r1")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Preferences copies", func() {
		It("should not leak internal state through the returned copy", func() {
			store.RecordPreference(ctx, "fav", true)

			p := store.Preferences()
			p.FavoriteResources["injected"] = struct{}{}

			Expect(store.IsFavorite("injected")).To(BeFalse())
		})
	})
})
