package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcp-scout/mcp-scout/internal/discovery"
	"github.com/mcp-scout/mcp-scout/internal/index"
	"github.com/mcp-scout/mcp-scout/internal/matcher"
	"github.com/mcp-scout/mcp-scout/internal/prefs"
	"github.com/mcp-scout/mcp-scout/internal/resource"
	"github.com/mcp-scout/mcp-scout/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ScoutService adapts the discovery engine to MCP tool calls.
type ScoutService struct {
	index        *index.Index
	orchestrator *discovery.Orchestrator
	matcher      *matcher.Matcher
	prefs        *prefs.Store
	logBuffer    *logger.RingBuffer
	logger       *slog.Logger
}

func NewScoutService(
	ix *index.Index,
	orchestrator *discovery.Orchestrator,
	m *matcher.Matcher,
	prefStore *prefs.Store,
	logBuffer *logger.RingBuffer,
	log *slog.Logger,
) *ScoutService {
	return &ScoutService{
		index:        ix,
		orchestrator: orchestrator,
		matcher:      m,
		prefs:        prefStore,
		logBuffer:    logBuffer,
		logger:       log,
	}
}

// Tool couples an MCP tool definition with its handler.
type Tool struct {
	Definition mcp.Tool
	Handler    func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns every tool the engine exposes.
func (s *ScoutService) Tools() []Tool {
	return []Tool{
		{s.buildSearchTool(), s.handleSearch},
		{s.buildSuggestTool(), s.handleSuggest},
		{s.buildDiscoverNowTool(), s.handleDiscoverNow},
		{s.buildRefreshResourceTool(), s.handleRefreshResource},
		{s.buildRecordUsageTool(), s.handleRecordUsage},
		{s.buildSetFavoriteTool(), s.handleSetFavorite},
		{s.buildBlockResourceTool(), s.handleBlockResource},
		{s.buildStatusTool(), s.handleStatus},
	}
}

func (s *ScoutService) buildSearchTool() mcp.Tool {
	return mcp.NewTool(
		"search_resources",
		mcp.WithDescription("Search discovered resources by free text, registry and capability"),
		mcp.WithString("query",
			mcp.Description("Free-text query matched against names, descriptions, tags and tools"),
		),
		mcp.WithString("registry",
			mcp.Description("Restrict to one source registry"),
		),
		mcp.WithString("capability",
			mcp.Description("Restrict to one capability category (tools, database, web, ...)"),
		),
		mcp.WithNumber("min_trust",
			mcp.Description("Minimum trust score between 0 and 1"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results"),
		),
	)
}

func (s *ScoutService) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := index.SearchOptions{
		Registry: resource.RegistryType(req.GetString("registry", "")),
		Limit:    req.GetInt("limit", 10),
	}
	if capability := req.GetString("capability", ""); capability != "" {
		opts.Capabilities = []resource.CapabilityCategory{resource.CapabilityCategory(capability)}
	}
	if minTrust := req.GetFloat("min_trust", -1); minTrust >= 0 {
		opts.MinTrustScore = &minTrust
	}

	results := s.index.Search(req.GetString("query", ""), opts)
	return jsonResult(results)
}

func (s *ScoutService) buildSuggestTool() mcp.Tool {
	return mcp.NewTool(
		"suggest_resources",
		mcp.WithDescription("Analyze free text and proactively suggest relevant resources"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Conversation text to analyze"),
		),
		mcp.WithString("conversation_id",
			mcp.Description("Optional conversation identifier for the match context"),
		),
		mcp.WithString("intent",
			mcp.Description("Optional intent override (question, creation, debugging, search, learning, general)"),
		),
	)
}

func (s *ScoutService) handleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("Text to analyze is required"), nil
	}

	matches := s.matcher.AnalyzeAndMatch(ctx,
		text,
		req.GetString("conversation_id", ""),
		resource.Intent(req.GetString("intent", "")))

	type suggestion struct {
		ResourceID    string   `json:"resource_id"`
		QualifiedName string   `json:"qualified_name"`
		DisplayName   string   `json:"display_name"`
		Registry      string   `json:"registry"`
		Confidence    float64  `json:"confidence"`
		Reason        string   `json:"reason"`
		Tools         []string `json:"suggested_tools,omitempty"`
	}

	out := make([]suggestion, 0, len(matches))
	for _, m := range matches {
		sg := suggestion{
			ResourceID:    m.Resource.ID,
			QualifiedName: m.Resource.QualifiedName,
			DisplayName:   m.Resource.DisplayName,
			Registry:      string(m.Resource.SourceRegistry),
			Confidence:    m.Confidence,
			Reason:        m.Reason.Describe(),
		}
		for _, t := range m.SuggestedTools {
			sg.Tools = append(sg.Tools, t.Name)
		}
		out = append(out, sg)
	}
	return jsonResult(out)
}

func (s *ScoutService) buildDiscoverNowTool() mcp.Tool {
	return mcp.NewTool(
		"discover_now",
		mcp.WithDescription("Trigger a discovery cycle across all registries"),
	)
}

func (s *ScoutService) handleDiscoverNow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.orchestrator.DiscoverNow(ctx); err != nil {
		if errors.Is(err, discovery.ErrDiscoveryInFlight) {
			return mcp.NewToolResultText("Discovery already in progress"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Discovery failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Discovery complete: %d resources indexed", s.index.Len())), nil
}

func (s *ScoutService) buildRefreshResourceTool() mcp.Tool {
	return mcp.NewTool(
		"refresh_resource",
		mcp.WithDescription("Re-fetch a single resource from its source registry"),
		mcp.WithString("resource_id",
			mcp.Required(),
			mcp.Description("Identifier of the resource to refresh"),
		),
	)
}

func (s *ScoutService) handleRefreshResource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("resource_id")
	if err != nil {
		return mcp.NewToolResultError("Resource id is required"), nil
	}
	if err := s.orchestrator.RefreshResource(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Refresh failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Resource refreshed"), nil
}

func (s *ScoutService) buildRecordUsageTool() mcp.Tool {
	return mcp.NewTool(
		"record_usage",
		mcp.WithDescription("Record that a suggested resource was used"),
		mcp.WithString("resource_id",
			mcp.Required(),
			mcp.Description("Identifier of the used resource"),
		),
		mcp.WithBoolean("was_helpful",
			mcp.Description("Whether the resource actually helped"),
		),
	)
}

func (s *ScoutService) handleRecordUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("resource_id")
	if err != nil {
		return mcp.NewToolResultError("Resource id is required"), nil
	}
	s.matcher.RecordUsage(ctx, id, req.GetBool("was_helpful", false))
	return mcp.NewToolResultText("Usage recorded"), nil
}

func (s *ScoutService) buildSetFavoriteTool() mcp.Tool {
	return mcp.NewTool(
		"set_favorite",
		mcp.WithDescription("Mark or unmark a resource as a favorite"),
		mcp.WithString("resource_id",
			mcp.Required(),
			mcp.Description("Identifier of the resource"),
		),
		mcp.WithBoolean("favorite",
			mcp.Description("True to favorite, false to unfavorite (default true)"),
		),
	)
}

func (s *ScoutService) handleSetFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("resource_id")
	if err != nil {
		return mcp.NewToolResultError("Resource id is required"), nil
	}
	s.matcher.RecordPreference(ctx, id, req.GetBool("favorite", true))
	return mcp.NewToolResultText("Preference recorded"), nil
}

func (s *ScoutService) buildBlockResourceTool() mcp.Tool {
	return mcp.NewTool(
		"block_resource",
		mcp.WithDescription("Block or unblock a resource from appearing in suggestions"),
		mcp.WithString("resource_id",
			mcp.Required(),
			mcp.Description("Identifier of the resource"),
		),
		mcp.WithBoolean("blocked",
			mcp.Description("True to block, false to unblock (default true)"),
		),
	)
}

func (s *ScoutService) handleBlockResource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("resource_id")
	if err != nil {
		return mcp.NewToolResultError("Resource id is required"), nil
	}
	s.prefs.SetBlocked(ctx, id, req.GetBool("blocked", true))
	return mcp.NewToolResultText("Block state recorded"), nil
}

func (s *ScoutService) buildStatusTool() mcp.Tool {
	return mcp.NewTool(
		"discovery_status",
		mcp.WithDescription("Show discovery statistics, last error and recent activity"),
		mcp.WithNumber("log_lines",
			mcp.Description("Number of recent log lines to include (default 20)"),
		),
	)
}

func (s *ScoutService) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.orchestrator.Stats()

	status := map[string]any{
		"total_resources":         stats.TotalResources,
		"discovery_count":         stats.DiscoveryCount,
		"last_discovery_date":     stats.LastDiscoveryDate,
		"last_discovery_duration": stats.LastDiscoveryDuration.String(),
		"last_error":              s.orchestrator.LastError(),
		"is_matching":             s.matcher.IsMatching(),
		"indexed_resources":       s.index.Len(),
		"recent_logs":             SanitizeLogLines(s.logBuffer.GetLast(req.GetInt("log_lines", 20))),
	}
	return jsonResult(status)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
