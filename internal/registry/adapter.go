package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mcp-scout/mcp-scout/internal/resource"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Adapter pulls resources from one external registry. Fetch never propagates
// a failure past its own boundary: any network error, non-success status or
// decode failure is logged inside the adapter and yields an empty slice. The
// returned error is informational only (it feeds the orchestrator's
// last-error diagnostic) and must never abort a discovery cycle.
type Adapter interface {
	Type() resource.RegistryType
	Fetch(ctx context.Context) ([]resource.DiscoveredResource, error)
}

// Refresher is implemented by adapters that can re-fetch a single resource by
// its qualified name. Adapters without point lookups simply don't implement it.
type Refresher interface {
	FetchOne(ctx context.Context, qualifiedName string) (*resource.DiscoveredResource, error)
}

// httpFetcher is the shared HTTP plumbing: one client, bounded per-call
// timeout, optional auth header.
type httpFetcher struct {
	client  *http.Client
	headers map[string]string
}

func newHTTPFetcher(timeout time.Duration, headers map[string]string) *httpFetcher {
	return &httpFetcher{
		client:  &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// getRaw issues a GET and returns the body. Non-2xx statuses are errors.
func (f *httpFetcher) getRaw(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// getJSON issues a GET and decodes the JSON body into v.
func (f *httpFetcher) getJSON(ctx context.Context, url string, v any) error {
	body, err := f.getRaw(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// inferCapabilities derives capability categories from a resource's name and
// description. Registries rarely expose structured capabilities, so this is
// the shared normalization every list-style adapter relies on.
func inferCapabilities(name, description string) []resource.ResourceCapability {
	text := strings.ToLower(name + " " + description)

	caps := []resource.ResourceCapability{
		{Name: "tools", Category: resource.CategoryTools, Description: "Exposes callable tools"},
	}

	add := func(cat resource.CapabilityCategory, capName, desc string, triggers ...string) {
		for _, t := range triggers {
			if strings.Contains(text, t) {
				caps = append(caps, resource.ResourceCapability{Name: capName, Category: cat, Description: desc})
				return
			}
		}
	}

	add(resource.CategoryDatabase, "database", "Database access", "database", "sql", "postgres", "mysql", "sqlite", "mongo")
	add(resource.CategoryFileSystem, "filesystem", "File system access", "file", "filesystem", "directory")
	add(resource.CategoryWeb, "web", "Web access", "web", "browser", "scrape", "search engine", "http")
	add(resource.CategoryAPI, "api", "Third-party API integration", "api", "rest", "graphql", "webhook")
	add(resource.CategoryAI, "ai", "AI and model features", " ai ", "llm", "model", "embedding", "agent")
	add(resource.CategoryDocumentation, "documentation", "Documentation lookup", "docs", "documentation", "reference")

	return caps
}

// tagsFrom builds a small tag set from whitespace/comma separated hints.
func tagsFrom(values ...string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, v := range values {
		for _, part := range strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
			return r == ',' || r == ' ' || r == '/'
		}) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			tags = append(tags, part)
		}
	}
	return tags
}
