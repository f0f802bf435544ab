package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"lessons/internal/blocktype"
	"lessons/internal/editor"
	"lessons/internal/service"
)

// Server is the MCP server for the lesson authoring engine. It exposes
// tools and resources so AI agents can build and rearrange documents the
// same way a human does through the UI.
type Server struct {
	mcp      *server.MCPServer
	sessions *service.SessionService
	registry *blocktype.Registry

	// Active node context (set by the open_node tool).
	active *editor.EditingSession
}

// Deps holds all dependencies passed to the MCP server.
type Deps struct {
	Sessions *service.SessionService
	Registry *blocktype.Registry
}

// New creates and configures an MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		sessions: deps.Sessions,
		registry: deps.Registry,
	}

	s.mcp = server.NewMCPServer(
		"lessons-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerSessionTools()
	s.registerDocumentTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] starting stdio server")
	return server.ServeStdio(s.mcp)
}

// activeSession returns the session opened with open_node.
func (s *Server) activeSession() (*editor.EditingSession, error) {
	if s.active == nil {
		return nil, fmt.Errorf("no active node; call open_node first")
	}
	return s.active, nil
}

// ── result helpers ─────────────────────────────────────────

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func getInt(args map[string]any, key string, fallback int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return fallback
}
