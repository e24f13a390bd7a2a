// Package mcptools exposes the bridge's command surface as MCP tools.
package mcptools

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
)

// EndpointPath is where the streamable HTTP transport is mounted.
const EndpointPath = "/mcp"

// Registrar is implemented by every tool group.
type Registrar interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds an MCP server with all groups registered.
func NewServer(name, version string, groups ...Registrar) (*server.MCPServer, error) {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	for _, g := range groups {
		if err := g.RegisterTools(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// HTTPHandler serves s over the streamable HTTP transport.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(EndpointPath))
}
