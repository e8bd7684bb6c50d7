package matcher_test

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcp-scout/mcp-scout/internal/index"
	"github.com/mcp-scout/mcp-scout/internal/matcher"
	"github.com/mcp-scout/mcp-scout/internal/nlp"
	"github.com/mcp-scout/mcp-scout/internal/prefs"
	"github.com/mcp-scout/mcp-scout/internal/registry"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/internal/storage"
	"github.com/mcp-scout/mcp-scout/pkg/config"
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

func docsResource() resource.DiscoveredResource {
	return resource.DiscoveredResource{
		ID:             "docs-1",
		SourceRegistry: resource.RegistryContext7,
		QualifiedName:  registry.Context7QualifiedName,
		DisplayName:    "Context7 Documentation",
		Description:    "Library documentation lookup",
		Capabilities: []resource.ResourceCapability{
			{Name: "documentation", Category: resource.CategoryDocumentation},
		},
		Tools: []resource.DiscoveredTool{
			{ID: "t1", Name: "resolve-library-id", Description: "Resolve a library"},
			{ID: "t2", Name: "get-library-docs", Description: "Fetch docs"},
			{ID: "t3", Name: "ping", Description: "Health check"},
		},
		TrustScore: 0.9,
		Popularity: 100,
	}
}

func dbResource() resource.DiscoveredResource {
	return resource.DiscoveredResource{
		ID:             "db-1",
		SourceRegistry: resource.RegistrySmithery,
		QualifiedName:  "test/database-server",
		DisplayName:    "Database Server",
		Description:    "Run database queries",
		Capabilities: []resource.ResourceCapability{
			{Name: "database", Category: resource.CategoryDatabase},
			{Name: "tools", Category: resource.CategoryTools},
		},
		TrustScore: 0.8,
		Popularity: 10,
	}
}

func webResource(id string) resource.DiscoveredResource {
	return resource.DiscoveredResource{
		ID:             id,
		SourceRegistry: resource.RegistrySmithery,
		QualifiedName:  "test/" + id,
		DisplayName:    "Web Fetcher " + id,
		Description:    "Fetches pages from the internet",
		Capabilities: []resource.ResourceCapability{
			{Name: "web", Category: resource.CategoryWeb},
		},
		TrustScore: 0.7,
		Popularity: 5,
	}
}

var _ = Describe("Matcher", func() {
	var (
		ix        *index.Index
		prefStore *prefs.Store
		m         *matcher.Matcher
		cfg       config.MatchingConfig
		ctx       context.Context
	)

	newMatcher := func() *matcher.Matcher {
		return matcher.New(ix, prefStore, nlp.NewRegexExtractor(), cfg, slog.Default())
	}

	BeforeEach(func() {
		ctx = context.Background()
		blobs := newFakeBlobStore()
		ix = index.New(blobs, 0, slog.Default())
		prefStore = prefs.NewStore(blobs, slog.Default())
		cfg = config.MatchingConfig{
			Enabled:        true,
			MinConfidence:  0.5,
			MaxSuggestions: 5,
			NLPEnabled:     true,
			HistoryLimit:   50,
		}

		ix.Merge([]resource.DiscoveredResource{docsResource(), dbResource()})
		ix.RebuildDerived()
		m = newMatcher()
	})

	Describe("Input guards", func() {
		It("should return empty for blank text without touching state", func() {
			Expect(m.AnalyzeAndMatch(ctx, "", "", "")).To(BeEmpty())
			Expect(m.AnalyzeAndMatch(ctx, "   \t\n", "", "")).To(BeEmpty())
			Expect(m.RecentMatches()).To(BeEmpty())
			Expect(m.CurrentSuggestions()).To(BeEmpty())
		})

		It("should return empty when matching is disabled", func() {
			cfg.Enabled = false
			m = newMatcher()
			Expect(m.AnalyzeAndMatch(ctx, "query the database", "", "")).To(BeEmpty())
		})
	})

	Describe("Output invariants", func() {
		It("should keep every confidence within [0,1] and sorted descending", func() {
			prefStore.RecordPreference(ctx, "docs-1", true)
			for i := 0; i < 20; i++ {
				prefStore.RecordUsage(ctx, "docs-1", true)
			}

			matches := m.AnalyzeAndMatch(ctx, "how to use react with a database api", "", "")
			Expect(matches).NotTo(BeEmpty())
			Expect(len(matches)).To(BeNumerically("<=", cfg.MaxSuggestions))

			for i, match := range matches {
				Expect(match.Confidence).To(BeNumerically(">=", cfg.MinConfidence))
				Expect(match.Confidence).To(BeNumerically("<=", 1.0))
				if i > 0 {
					Expect(matches[i-1].Confidence).To(BeNumerically(">=", match.Confidence))
				}
			}
		})

		It("should never contain two matches for the same resource", func() {
			matches := m.AnalyzeAndMatch(ctx, "how to use react documentation and database queries", "", "")
			seen := make(map[string]bool)
			for _, match := range matches {
				Expect(seen[match.Resource.ID]).To(BeFalse(), "duplicate resource %s", match.Resource.ID)
				seen[match.Resource.ID] = true
			}
		})
	})

	Describe("Dedup ordering", func() {
		It("should keep the library-reference match over a later how-to pattern match", func() {
			// Both strategies hit the same documentation resource; the
			// library reference is appended first and wins at 0.85, even
			// though keep-highest would agree here, the reason proves the
			// first-seen rule.
			matches := m.AnalyzeAndMatch(ctx, "how to use react hooks", "", "")

			var docMatches []resource.ResourceMatch
			for _, match := range matches {
				if match.Resource.ID == "docs-1" {
					docMatches = append(docMatches, match)
				}
			}
			Expect(docMatches).To(HaveLen(1))
			Expect(docMatches[0].Confidence).To(BeNumerically("~", 0.85, 1e-9))
			Expect(docMatches[0].Reason).To(BeAssignableToTypeOf(resource.LibraryReference{}))
		})

		It("should restrict library suggestions to docs-flavored tools", func() {
			matches := m.AnalyzeAndMatch(ctx, "building with react", "", "")

			var libMatch *resource.ResourceMatch
			for i := range matches {
				if _, ok := matches[i].Reason.(resource.LibraryReference); ok {
					libMatch = &matches[i]
					break
				}
			}
			Expect(libMatch).NotTo(BeNil())
			for _, t := range libMatch.SuggestedTools {
				Expect(t.Name).To(Or(ContainSubstring("library"), ContainSubstring("docs")))
			}
		})
	})

	Describe("Boost composition", func() {
		It("should add favorite then frequency boosts with caps", func() {
			prefStore.RecordPreference(ctx, "db-1", true)
			for i := 0; i < 10; i++ {
				prefStore.RecordUsage(ctx, "db-1", true)
			}

			// Single keyword -> base confidence 0.5 + 0.1 = 0.6, then
			// +0.15 favorite and +min(0.2, 10*0.02) frequency.
			matches := m.AnalyzeAndMatch(ctx, "database", "", "")

			var dbMatch *resource.ResourceMatch
			for i := range matches {
				if matches[i].Resource.ID == "db-1" {
					dbMatch = &matches[i]
					break
				}
			}
			Expect(dbMatch).NotTo(BeNil())
			Expect(dbMatch.Confidence).To(BeNumerically("~", 0.95, 1e-9))
		})

		It("should not apply the frequency boost at three or fewer uses", func() {
			for i := 0; i < 3; i++ {
				prefStore.RecordUsage(ctx, "db-1", true)
			}

			matches := m.AnalyzeAndMatch(ctx, "database", "", "")
			var dbMatch *resource.ResourceMatch
			for i := range matches {
				if matches[i].Resource.ID == "db-1" {
					dbMatch = &matches[i]
					break
				}
			}
			Expect(dbMatch).NotTo(BeNil())
			Expect(dbMatch.Confidence).To(BeNumerically("~", 0.6, 1e-9))
		})
	})

	Describe("Blocked resources", func() {
		It("should never suggest a blocked resource", func() {
			prefStore.SetBlocked(ctx, "db-1", true)

			matches := m.AnalyzeAndMatch(ctx, "database queries", "", "")
			for _, match := range matches {
				Expect(match.Resource.ID).NotTo(Equal("db-1"))
			}
		})
	})

	Describe("Keyword strategy", func() {
		It("should grow confidence with the number of matched keywords", func() {
			one := m.AnalyzeAndMatch(ctx, "database", "", "")
			Expect(one).NotTo(BeEmpty())
			Expect(one[0].Confidence).To(BeNumerically("~", 0.6, 1e-9))
		})

		It("should carry the matched keywords in the reason", func() {
			matches := m.AnalyzeAndMatch(ctx, "database", "", "")
			Expect(matches).NotTo(BeEmpty())
			kw, ok := matches[0].Reason.(resource.KeywordMatch)
			Expect(ok).To(BeTrue())
			Expect(kw.Keywords).To(ContainElement("database"))
		})
	})

	Describe("Pattern strategy", func() {
		It("should cap URL-driven suggestions at two web resources", func() {
			ix.Merge([]resource.DiscoveredResource{webResource("web-1"), webResource("web-2"), webResource("web-3")})
			ix.RebuildDerived()

			matches := m.AnalyzeAndMatch(ctx, "please summarize https://example.com/article", "", "")

			var urlMatches int
			for _, match := range matches {
				if reason, ok := match.Reason.(resource.PatternDetected); ok && reason.Pattern == "url reference" {
					urlMatches++
				}
			}
			Expect(urlMatches).To(BeNumerically("<=", 2))
			Expect(urlMatches).To(BeNumerically(">", 0))
		})

		It("should route how-to phrasing to the documentation service", func() {
			matches := m.AnalyzeAndMatch(ctx, "how do I paginate results", "", "")
			Expect(matches).NotTo(BeEmpty())
			Expect(matches[0].Resource.ID).To(Equal("docs-1"))
			Expect(matches[0].Confidence).To(BeNumerically("~", 0.7, 1e-9))
		})
	})

	Describe("Match context", func() {
		It("should detect a question intent", func() {
			matches := m.AnalyzeAndMatch(ctx, "how do I query a database?", "conv-1", "")
			Expect(matches).NotTo(BeEmpty())
			Expect(matches[0].Context.DetectedIntent).To(Equal(resource.IntentQuestion))
			Expect(matches[0].Context.ConversationID).To(Equal("conv-1"))
		})

		It("should honor a caller-supplied intent", func() {
			matches := m.AnalyzeAndMatch(ctx, "database", "", resource.IntentDebug)
			Expect(matches).NotTo(BeEmpty())
			Expect(matches[0].Context.DetectedIntent).To(Equal(resource.IntentDebug))
		})

		It("should extract entities when NLP is enabled", func() {
			matches := m.AnalyzeAndMatch(ctx, "connect to postgres please", "", "")
			Expect(matches).NotTo(BeEmpty())
			Expect(matches[0].Context.ExtractedEntities).To(HaveKeyWithValue("postgres", "database"))
		})
	})

	Describe("History", func() {
		It("should publish suggestions and keep a capped history", func() {
			cfg.HistoryLimit = 3
			m = newMatcher()

			for i := 0; i < 5; i++ {
				m.AnalyzeAndMatch(ctx, "database", "", "")
			}

			Expect(m.CurrentSuggestions()).NotTo(BeEmpty())
			Expect(len(m.RecentMatches())).To(BeNumerically("<=", 3))
		})
	})
})
