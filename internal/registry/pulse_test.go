package registry_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/mcp-scout/mcp-scout/internal/registry"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/pkg/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PulseAdapter", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc

		mu        sync.Mutex
		queries   []string
		pageSizes []string
	)

	BeforeEach(func() {
		handler = nil
		queries = nil
		pageSizes = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			queries = append(queries, r.URL.Query().Get("query"))
			pageSizes = append(pageSizes, r.URL.Query().Get("count_per_page"))
			mu.Unlock()
			if handler != nil {
				handler(w, r)
				return
			}
			fmt.Fprint(w, `{"servers": []}`)
		}))
		DeferCleanup(server.Close)
	})

	newAdapter := func(budget int) *registry.PulseAdapter {
		return registry.NewPulseAdapter(config.PulseConfig{BaseURL: server.URL}, budget, 5*time.Second, slog.Default())
	}

	It("should issue one request per canned query", func() {
		_, err := newAdapter(100).Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(queries).To(ConsistOf("database", "filesystem", "web search", "api client", "documentation"))
	})

	It("should cap each query to its share of the budget", func() {
		_, err := newAdapter(100).Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		// 100 budget over 5 queries.
		Expect(pageSizes).To(HaveEach("20"))
	})

	It("should coerce loosely typed fields and dedup across queries", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			// Every query returns the same server plus one unique entry;
			// github_stars arrives as a string in the beta payload.
			fmt.Fprintf(w, `{"servers": [
				{"name": "Shared", "slug": "org/shared", "short_description": "seen everywhere", "github_stars": "42"},
				{"name": "Unique %s", "short_description": "only here", "github_stars": 7, "package_registry": "npm"}
			]}`, r.URL.Query().Get("query"))
		}

		resources, err := newAdapter(100).Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		// 1 shared + 5 unique.
		Expect(resources).To(HaveLen(6))

		var shared resource.DiscoveredResource
		for _, r := range resources {
			if r.QualifiedName == "org/shared" {
				shared = r
			}
		}
		Expect(shared.Popularity).To(Equal(42))
		Expect(shared.TrustScore).To(BeNumerically("~", 0.5, 0.001))
	})

	It("should bump trust for servers published to a package registry", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("query") != "database" {
				fmt.Fprint(w, `{"servers": []}`)
				return
			}
			fmt.Fprint(w, `{"servers": [
				{"name": "Published", "slug": "org/published", "short_description": "x", "package_registry": "npm"}
			]}`)
		}

		resources, err := newAdapter(100).Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(resources).To(HaveLen(1))
		Expect(resources[0].TrustScore).To(BeNumerically("~", 0.65, 0.001))
	})

	It("should keep results from healthy queries when one fails", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("query") == "database" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintf(w, `{"servers": [{"name": "OK %s", "short_description": "x"}]}`, r.URL.Query().Get("query"))
		}

		resources, err := newAdapter(100).Fetch(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("pulsemcp"))
		Expect(resources).To(HaveLen(4))
	})

	It("should synthesize a qualified name when the slug is missing", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("query") != "database" {
				fmt.Fprint(w, `{"servers": []}`)
				return
			}
			fmt.Fprint(w, `{"servers": [{"name": "My Cool Server", "short_description": "x"}]}`)
		}

		resources, err := newAdapter(100).Fetch(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(resources).To(HaveLen(1))
		Expect(resources[0].QualifiedName).To(Equal("pulsemcp/my-cool-server"))
	})
})
