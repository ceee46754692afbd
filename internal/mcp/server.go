// ABOUTME: MCP server exposing training queries over stdio.
// ABOUTME: Wraps the MCP server with a query.Service.
package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/trainload/internal/query"
)

// Server wraps the MCP server with query access.
type Server struct {
	mcpServer *mcp.Server
	queries   *query.Service
	now       func() time.Time
}

// NewServer creates a new MCP server over the given query service.
func NewServer(queries *query.Service, version string) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "trainload",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		queries:   queries,
		now:       time.Now,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
