package registry

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/pkg/config"
)

// linkEntryPattern extracts "[name](url) - description" entries from the
// semi-structured list document.
var linkEntryPattern = regexp.MustCompile(`(?m)^\s*[-*]\s*\[([^\]]+)\]\(([^)]+)\)\s*[-–—:]\s*(.+)$`)

// AwesomeListAdapter scrapes a community-maintained server list: it GETs the
// raw document and regex-extracts name/url/description triples. Scraped
// entries carry the unknown-source default trust.
type AwesomeListAdapter struct {
	cfg     config.AwesomeListConfig
	budget  int
	fetcher *httpFetcher
	logger  *slog.Logger
}

func NewAwesomeListAdapter(cfg config.AwesomeListConfig, budget int, timeout time.Duration, logger *slog.Logger) *AwesomeListAdapter {
	return &AwesomeListAdapter{
		cfg:     cfg,
		budget:  budget,
		fetcher: newHTTPFetcher(timeout, nil),
		logger:  logger.With("registry", resource.RegistryAwesomeList),
	}
}

func (a *AwesomeListAdapter) Type() resource.RegistryType {
	return resource.RegistryAwesomeList
}

func (a *AwesomeListAdapter) Fetch(ctx context.Context) ([]resource.DiscoveredResource, error) {
	body, err := a.fetcher.getRaw(ctx, a.cfg.URL)
	if err != nil {
		a.logger.Error("Awesome list fetch failed", "url", a.cfg.URL, "error", err)
		return nil, fmt.Errorf("awesome-list: %w", err)
	}

	var out []resource.DiscoveredResource
	for _, m := range linkEntryPattern.FindAllStringSubmatch(string(body), -1) {
		if len(out) >= a.budget {
			break
		}

		name := strings.TrimSpace(m[1])
		link := strings.TrimSpace(m[2])
		desc := strings.TrimSpace(m[3])

		// Scraped text is noisy; drop entries with implausible names or no
		// real description.
		if len(name) < 2 || len(name) > 64 || desc == "" {
			continue
		}

		out = append(out, resource.DiscoveredResource{
			ID:             uuid.NewString(),
			SourceRegistry: resource.RegistryAwesomeList,
			QualifiedName:  "awesome/" + tagSafe(name),
			DisplayName:    name,
			Description:    desc,
			Capabilities:   inferCapabilities(name, desc),
			TrustScore:     0.5,
			Popularity:     0,
			LastUpdated:    time.Now(),
			Connection: &resource.ConnectionConfig{
				TransportType: resource.TransportStdio,
				AuthType:      resource.AuthNone,
				Config:        map[string]string{"homepage": link},
			},
			Tags: tagsFrom(name),
		})
	}

	a.logger.Debug("Scraped awesome list entries", "count", len(out))
	return out, nil
}
