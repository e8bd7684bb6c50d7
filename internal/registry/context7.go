package registry

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/pkg/config"
)

// Context7QualifiedName is the compound key the matcher uses to look up the
// documentation service for library-reference and how-to suggestions.
const Context7QualifiedName = "context7/documentation"

// context7ResourceID is deliberately stable across refreshes so favorites and
// usage stats keep pointing at the same resource.
const context7ResourceID = "context7-documentation"

// Context7Adapter is a single-resource adapter: when an API key is configured
// it yields exactly one synthetic resource describing the documentation
// service itself. No network call is involved.
type Context7Adapter struct {
	cfg    config.Context7Config
	logger *slog.Logger
}

func NewContext7Adapter(cfg config.Context7Config, logger *slog.Logger) *Context7Adapter {
	return &Context7Adapter{
		cfg:    cfg,
		logger: logger.With("registry", resource.RegistryContext7),
	}
}

func (a *Context7Adapter) Type() resource.RegistryType {
	return resource.RegistryContext7
}

func (a *Context7Adapter) Fetch(ctx context.Context) ([]resource.DiscoveredResource, error) {
	if a.cfg.APIKey == "" {
		a.logger.Debug("Context7 API key not configured, skipping")
		return nil, nil
	}

	return []resource.DiscoveredResource{{
		ID:             context7ResourceID,
		SourceRegistry: resource.RegistryContext7,
		QualifiedName:  Context7QualifiedName,
		DisplayName:    "Context7 Documentation",
		Description:    "Up-to-date library and framework documentation lookup",
		Capabilities: []resource.ResourceCapability{
			{Name: "documentation", Category: resource.CategoryDocumentation, Description: "Library documentation lookup"},
			{Name: "tools", Category: resource.CategoryTools, Description: "Documentation retrieval tools"},
		},
		Tools: []resource.DiscoveredTool{
			{
				ID:          "context7-resolve-library-id",
				Name:        "resolve-library-id",
				Description: "Resolve a library name to a Context7 library identifier",
				InputSchema: map[string]resource.ToolParameter{
					"libraryName": {Type: "string", Description: "Library name to resolve", Required: true},
				},
			},
			{
				ID:          "context7-get-library-docs",
				Name:        "get-library-docs",
				Description: "Fetch documentation for a resolved library",
				InputSchema: map[string]resource.ToolParameter{
					"libraryID": {Type: "string", Description: "Resolved library identifier", Required: true},
					"topic":     {Type: "string", Description: "Optional topic to focus on", Required: false},
				},
			},
		},
		TrustScore:  0.9,
		Popularity:  1000,
		LastUpdated: time.Now(),
		Connection: &resource.ConnectionConfig{
			TransportType: resource.TransportHTTP,
			Endpoint:      "https://mcp.context7.com/mcp",
			AuthType:      resource.AuthAPIKey,
		},
		Tags:       []string{"documentation", "library", "docs"},
		IsVerified: true,
		IsHosted:   true,
	}}, nil
}
