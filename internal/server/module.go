package server

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
)

// NewMCPServerInstance creates the MCP server instance.
func NewMCPServerInstance(logger *slog.Logger) *server.MCPServer {
	logger.Debug("Creating MCP server instance")
	return server.NewMCPServer(
		"MCP Scout",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
}

// registerTools wires every scout tool into the MCP server.
func registerTools(mcpServer *server.MCPServer, scout *ScoutService, logger *slog.Logger) {
	for _, tool := range scout.Tools() {
		mcpServer.AddTool(tool.Definition, tool.Handler)
		logger.Debug("Tool registered", "tool", tool.Definition.Name)
	}
}

// run ties the MCP server to the fx lifecycle: serve stdio in the background
// once the application starts.
func run(lc fx.Lifecycle, mcpServer *server.MCPServer, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("MCP Scout listening on stdio")
			go func() {
				if err := server.ServeStdio(mcpServer); err != nil {
					logger.Error("Server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			logger.Info("Stopping MCP Scout...")
			return nil
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(
		NewMCPServerInstance,
		NewScoutService,
	),
	fx.Invoke(registerTools),
	fx.Invoke(run),
)
