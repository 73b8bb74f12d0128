package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitCoach coaching server. Look up a client's workout assignments, inspect prescribed exercises and logged sets, and check completion progress."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListAssignments, Handler: h.listAssignments},
		server.ServerTool{Tool: toolGetAssignment, Handler: h.getAssignment},
		server.ServerTool{Tool: toolGetAssignmentProgress, Handler: h.getAssignmentProgress},
	)

	s.AddResources(
		server.ServerResource{Resource: resStatusLegend, Handler: h.statusLegend},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resStatusLegend = mcp.NewResource(
	"fitcoach://status_legend",
	"Status Legend",
	mcp.WithResourceDescription("Assignment statuses, their accepted spellings, and the rest timer colour bands"),
	mcp.WithMIMEType("application/json"),
)
