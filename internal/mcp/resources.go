package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── lessons://sessions ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"lessons://sessions",
		"All Sessions",
		mcp.WithMIMEType("application/json"),
	), s.handleSessionsResource)

	// ── lessons://document ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"lessons://document",
		"Open Document",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentResource)
}

func (s *Server) handleSessionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(sessions, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "lessons://sessions",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, fmt.Errorf("document resource: %w", err)
	}
	doc, err := es.ExtractAll()
	if err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(doc, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "lessons://document",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
