package resource

import (
	"time"
)

// RegistryType identifies the external source an adapter pulls from.
type RegistryType string

const (
	RegistrySmithery    RegistryType = "smithery"
	RegistryPulseMCP    RegistryType = "pulsemcp"
	RegistryContext7    RegistryType = "context7"
	RegistryAwesomeList RegistryType = "awesome-list"
)

// CapabilityCategory is the closed classification of what a resource can do.
type CapabilityCategory string

const (
	CategoryTools         CapabilityCategory = "tools"
	CategoryPrompts       CapabilityCategory = "prompts"
	CategoryResources     CapabilityCategory = "resources"
	CategorySampling      CapabilityCategory = "sampling"
	CategoryDocumentation CapabilityCategory = "documentation"
	CategoryFileSystem    CapabilityCategory = "filesystem"
	CategoryDatabase      CapabilityCategory = "database"
	CategoryAPI           CapabilityCategory = "api"
	CategoryWeb           CapabilityCategory = "web"
	CategoryAI            CapabilityCategory = "ai"
	CategoryCustom        CapabilityCategory = "custom"
)

// TransportType is how a discovered server expects to be connected to.
type TransportType string

const (
	TransportStdio     TransportType = "stdio"
	TransportHTTP      TransportType = "http"
	TransportWebSocket TransportType = "websocket"
	TransportSSE       TransportType = "sse"
)

// AuthType describes the credential scheme a resource requires.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "apiKey"
	AuthBearer AuthType = "bearer"
	AuthOAuth  AuthType = "oauth"
	AuthCustom AuthType = "custom"
)

// ResourceCapability is one advertised capability of a discovered resource.
type ResourceCapability struct {
	Name        string             `json:"name"`
	Category    CapabilityCategory `json:"category"`
	Description string             `json:"description"`
}

// ToolParameter describes a single input parameter of a discovered tool.
type ToolParameter struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     string   `json:"default,omitempty"`
	EnumValues  []string `json:"enum_values,omitempty"`
}

// DiscoveredTool is a tool exposed by a discovered resource.
type DiscoveredTool struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	InputSchema map[string]ToolParameter `json:"input_schema,omitempty"`
	OutputType  string                   `json:"output_type,omitempty"`
	Examples    []string                 `json:"examples,omitempty"`
}

// ConnectionConfig carries what is needed to actually connect to a resource.
type ConnectionConfig struct {
	TransportType TransportType     `json:"transport_type"`
	Endpoint      string            `json:"endpoint,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	AuthType      AuthType          `json:"auth_type"`
	Config        map[string]string `json:"config,omitempty"`
}

// DiscoveredResource is the canonical unit of discovery: one capability-bearing
// entity (a tool server, a documentation provider) normalized from whatever
// shape its source registry uses.
type DiscoveredResource struct {
	ID             string               `json:"id"`
	SourceRegistry RegistryType         `json:"source_registry"`
	QualifiedName  string               `json:"qualified_name"`
	DisplayName    string               `json:"display_name"`
	Description    string               `json:"description"`
	Capabilities   []ResourceCapability `json:"capabilities,omitempty"`
	Tools          []DiscoveredTool     `json:"tools,omitempty"`
	TrustScore     float64              `json:"trust_score"`
	Popularity     int                  `json:"popularity"`
	LastUpdated    time.Time            `json:"last_updated"`
	Connection     *ConnectionConfig    `json:"connection,omitempty"`
	Tags           []string             `json:"tags,omitempty"`
	IsVerified     bool                 `json:"is_verified"`
	IsHosted       bool                 `json:"is_hosted"`
}

// HasCategory reports whether the resource advertises the given capability category.
func (r *DiscoveredResource) HasCategory(cat CapabilityCategory) bool {
	for _, c := range r.Capabilities {
		if c.Category == cat {
			return true
		}
	}
	return false
}

// CategorySet returns the distinct capability categories of the resource.
func (r *DiscoveredResource) CategorySet() map[CapabilityCategory]struct{} {
	set := make(map[CapabilityCategory]struct{}, len(r.Capabilities))
	for _, c := range r.Capabilities {
		set[c.Category] = struct{}{}
	}
	return set
}

// ClampScore clamps trust scores and confidences to [0,1].
// Every score entering or leaving the subsystem goes through this.
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
