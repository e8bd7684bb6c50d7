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
)

// SmitheryAdapter pages through the Smithery server list API. It is the one
// adapter that supports point lookups, which is what powers single-resource
// refresh.
type SmitheryAdapter struct {
	cfg     config.SmitheryConfig
	budget  int
	fetcher *httpFetcher
	logger  *slog.Logger
}

type smitheryServer struct {
	QualifiedName string  `json:"qualifiedName"`
	DisplayName   string  `json:"displayName"`
	Description   string  `json:"description"`
	Homepage      string  `json:"homepage"`
	UseCount      int     `json:"useCount"`
	Rating        float64 `json:"rating"` // 0-10 scale
	IsVerified    bool    `json:"isVerified"`
	IsDeployed    bool    `json:"isDeployed"`
	DeploymentURL string  `json:"deploymentUrl"`
}

type smitheryListResponse struct {
	Servers    []smitheryServer `json:"servers"`
	Pagination struct {
		CurrentPage int `json:"currentPage"`
		TotalPages  int `json:"totalPages"`
	} `json:"pagination"`
}

type smitheryServerDetail struct {
	smitheryServer
	Tools []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"tools"`
}

func NewSmitheryAdapter(cfg config.SmitheryConfig, budget int, timeout time.Duration, logger *slog.Logger) *SmitheryAdapter {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	return &SmitheryAdapter{
		cfg:     cfg,
		budget:  budget,
		fetcher: newHTTPFetcher(timeout, headers),
		logger:  logger.With("registry", resource.RegistrySmithery),
	}
}

func (a *SmitheryAdapter) Type() resource.RegistryType {
	return resource.RegistrySmithery
}

func (a *SmitheryAdapter) Fetch(ctx context.Context) ([]resource.DiscoveredResource, error) {
	var out []resource.DiscoveredResource

	page := 1
	for len(out) < a.budget {
		listing, err := a.fetchPage(ctx, page)
		if err != nil {
			a.logger.Error("Smithery page fetch failed", "page", page, "error", err)
			// Keep whatever earlier pages produced.
			return out, fmt.Errorf("smithery: %w", err)
		}

		for _, s := range listing.Servers {
			if len(out) >= a.budget {
				break
			}
			out = append(out, a.normalize(s, nil))
		}

		if page >= listing.Pagination.TotalPages || len(listing.Servers) == 0 {
			break
		}
		page++
	}

	a.logger.Debug("Fetched Smithery servers", "count", len(out))
	return out, nil
}

// FetchOne re-fetches a single server by qualified name.
func (a *SmitheryAdapter) FetchOne(ctx context.Context, qualifiedName string) (*resource.DiscoveredResource, error) {
	endpoint := fmt.Sprintf("%s/servers/%s", a.cfg.BaseURL, url.PathEscape(qualifiedName))

	var detail smitheryServerDetail
	if err := a.fetcher.getJSON(ctx, endpoint, &detail); err != nil {
		a.logger.Error("Smithery point lookup failed", "qualified_name", qualifiedName, "error", err)
		return nil, fmt.Errorf("smithery: %w", err)
	}

	var tools []resource.DiscoveredTool
	for _, t := range detail.Tools {
		tools = append(tools, resource.DiscoveredTool{
			ID:          uuid.NewString(),
			Name:        t.Name,
			Description: t.Description,
		})
	}

	r := a.normalize(detail.smitheryServer, tools)
	return &r, nil
}

func (a *SmitheryAdapter) fetchPage(ctx context.Context, page int) (*smitheryListResponse, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("pageSize", fmt.Sprint(a.cfg.PageSize))
	if a.cfg.VerifiedOnly {
		q.Set("q", "is:verified")
	}

	var listing smitheryListResponse
	if err := a.fetcher.getJSON(ctx, a.cfg.BaseURL+"/servers?"+q.Encode(), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (a *SmitheryAdapter) normalize(s smitheryServer, tools []resource.DiscoveredTool) resource.DiscoveredResource {
	// Smithery rates on a 0-10 scale; unknown ratings land on 0.5.
	trust := 0.5
	if s.Rating > 0 {
		trust = resource.ClampScore(s.Rating / 10)
	}

	conn := &resource.ConnectionConfig{
		TransportType: resource.TransportStdio,
		AuthType:      resource.AuthNone,
	}
	if s.IsDeployed && s.DeploymentURL != "" {
		conn = &resource.ConnectionConfig{
			TransportType: resource.TransportHTTP,
			Endpoint:      s.DeploymentURL,
			AuthType:      resource.AuthBearer,
		}
	}

	return resource.DiscoveredResource{
		ID:             uuid.NewString(),
		SourceRegistry: resource.RegistrySmithery,
		QualifiedName:  s.QualifiedName,
		DisplayName:    s.DisplayName,
		Description:    s.Description,
		Capabilities:   inferCapabilities(s.DisplayName, s.Description),
		Tools:          tools,
		TrustScore:     trust,
		Popularity:     s.UseCount,
		LastUpdated:    time.Now(),
		Connection:     conn,
		Tags:           tagsFrom(s.DisplayName),
		IsVerified:     s.IsVerified,
		IsHosted:       s.IsDeployed,
	}
}
