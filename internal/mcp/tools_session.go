package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSessionTools() {
	// ── create_session ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new authoring session"),
		mcp.WithString("name", mcp.Description("Session name"), mcp.Required()),
	), s.handleCreateSession)

	// ── create_node ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_node",
		mcp.WithDescription("Create a new node (document) in a session"),
		mcp.WithString("sessionId", mcp.Description("Session ID"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Node title"), mcp.Required()),
	), s.handleCreateNode)

	// ── open_node ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_node",
		mcp.WithDescription("Open a node for editing. Subsequent document tools operate on this node."),
		mcp.WithString("sessionId", mcp.Description("Session ID"), mcp.Required()),
		mcp.WithString("nodeId", mcp.Description("Node ID, e.g. N001"), mcp.Required()),
	), s.handleOpenNode)

	// ── list_sessions ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all authoring sessions"),
	), s.handleListSessions)

	// ── list_nodes ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List all nodes of a session"),
		mcp.WithString("sessionId", mcp.Description("Session ID"), mcp.Required()),
	), s.handleListNodes)
}

func (s *Server) handleCreateSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	sess, err := s.sessions.CreateSession(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return jsonResult(sess)
}

func (s *Server) handleCreateNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sessionID, _ := args["sessionId"].(string)
	title, _ := args["title"].(string)
	if sessionID == "" || title == "" {
		return nil, fmt.Errorf("sessionId and title are required")
	}
	node, err := s.sessions.CreateNode(ctx, sessionID, title)
	if err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}
	return jsonResult(node)
}

func (s *Server) handleOpenNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sessionID, _ := args["sessionId"].(string)
	nodeID, _ := args["nodeId"].(string)
	if sessionID == "" || nodeID == "" {
		return nil, fmt.Errorf("sessionId and nodeId are required")
	}
	es, err := s.sessions.OpenNode(ctx, sessionID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("open node: %w", err)
	}
	s.active = es
	return textResult(fmt.Sprintf("Node %s/%s open, %d blocks", sessionID, nodeID, len(es.Blocks()))), nil
}

func (s *Server) handleListSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(sessions)
}

func (s *Server) handleListNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sessionID, _ := args["sessionId"].(string)
	if sessionID == "" {
		return nil, fmt.Errorf("sessionId is required")
	}
	nodes, err := s.sessions.ListNodes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return jsonResult(nodes)
}
