package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/pkg/config"
	"github.com/spf13/cast"
)

// cannedQueries broadens coverage of the PulseMCP search API: one request per
// query, each capped to a fair share of the per-cycle budget.
var cannedQueries = []string{
	"database",
	"filesystem",
	"web search",
	"api client",
	"documentation",
}

// PulseAdapter queries the PulseMCP search API. The beta payload is loosely
// typed, so fields are coerced individually instead of decoded into a struct.
type PulseAdapter struct {
	cfg     config.PulseConfig
	budget  int
	fetcher *httpFetcher
	logger  *slog.Logger
}

func NewPulseAdapter(cfg config.PulseConfig, budget int, timeout time.Duration, logger *slog.Logger) *PulseAdapter {
	return &PulseAdapter{
		cfg:     cfg,
		budget:  budget,
		fetcher: newHTTPFetcher(timeout, nil),
		logger:  logger.With("registry", resource.RegistryPulseMCP),
	}
}

func (a *PulseAdapter) Type() resource.RegistryType {
	return resource.RegistryPulseMCP
}

func (a *PulseAdapter) Fetch(ctx context.Context) ([]resource.DiscoveredResource, error) {
	perQuery := a.budget / len(cannedQueries)
	if perQuery < 1 {
		perQuery = 1
	}

	seen := make(map[string]struct{})
	var out []resource.DiscoveredResource
	var lastErr error

	for _, query := range cannedQueries {
		servers, err := a.search(ctx, query, perQuery)
		if err != nil {
			// One failed query doesn't invalidate the others.
			a.logger.Warn("PulseMCP query failed", "query", query, "error", err)
			lastErr = err
			continue
		}

		for _, raw := range servers {
			r := a.normalize(raw)
			if r.QualifiedName == "" {
				continue
			}
			if _, dup := seen[r.QualifiedName]; dup {
				continue
			}
			seen[r.QualifiedName] = struct{}{}
			out = append(out, r)
		}
	}

	a.logger.Debug("Fetched PulseMCP servers", "count", len(out))
	if lastErr != nil {
		return out, fmt.Errorf("pulsemcp: %w", lastErr)
	}
	return out, nil
}

func (a *PulseAdapter) search(ctx context.Context, query string, limit int) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("count_per_page", fmt.Sprint(limit))

	var payload struct {
		Servers []map[string]any `json:"servers"`
	}
	if err := a.fetcher.getJSON(ctx, a.cfg.BaseURL+"/servers?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Servers, nil
}

func (a *PulseAdapter) normalize(raw map[string]any) resource.DiscoveredResource {
	name := cast.ToString(raw["name"])
	desc := cast.ToString(raw["short_description"])
	stars := cast.ToInt(raw["github_stars"])

	qualifiedName := cast.ToString(raw["slug"])
	if qualifiedName == "" {
		qualifiedName = "pulsemcp/" + tagSafe(name)
	}

	// PulseMCP carries no rating; servers published to a package registry
	// get a modest bump over the unknown-source default.
	trust := 0.5
	if cast.ToString(raw["package_registry"]) != "" {
		trust = 0.65
	}

	var conn *resource.ConnectionConfig
	if ext := cast.ToString(raw["external_url"]); ext != "" {
		conn = &resource.ConnectionConfig{
			TransportType: resource.TransportHTTP,
			Endpoint:      ext,
			AuthType:      resource.AuthNone,
		}
	}

	return resource.DiscoveredResource{
		ID:             uuid.NewString(),
		SourceRegistry: resource.RegistryPulseMCP,
		QualifiedName:  qualifiedName,
		DisplayName:    name,
		Description:    desc,
		Capabilities:   inferCapabilities(name, desc),
		TrustScore:     trust,
		Popularity:     stars,
		LastUpdated:    time.Now(),
		Connection:     conn,
		Tags:           tagsFrom(name, cast.ToString(raw["package_registry"])),
		IsHosted:       conn != nil,
	}
}

func tagSafe(s string) string {
	tags := tagsFrom(s)
	if len(tags) == 0 {
		return "unknown"
	}
	out := tags[0]
	for _, t := range tags[1:] {
		out += "-" + t
	}
	return out
}
