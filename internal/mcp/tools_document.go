package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"lessons/internal/domain"
	"lessons/internal/importer"
)

func (s *Server) registerDocumentTools() {
	// ── insert_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_block",
		mcp.WithDescription("Insert a new block into the open document. Use list_block_types for available types."),
		mcp.WithString("type", mcp.Description("Block type tag, e.g. heading"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Insertion index (default: end of document)")),
		mcp.WithString("data", mcp.Description("Initial payload as a JSON object (optional)")),
	), s.handleInsertBlock)

	// ── update_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Update an existing block's content"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("data", mcp.Description("Payload as a JSON object"), mcp.Required()),
	), s.handleUpdateBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block to a new index in the open document"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Target index"), mcp.Required()),
	), s.handleMoveBlock)

	// ── remove_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove a block from the open document."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveBlock)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List the open document's blocks in order"),
	), s.handleListBlocks)

	// ── get_preview ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_preview",
		mcp.WithDescription("Render the open document's preview HTML"),
	), s.handleGetPreview)

	// ── list_block_types ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("List the registered block type tags"),
	), s.handleListBlockTypes)

	// ── save_now ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_now",
		mcp.WithDescription("Flush any pending autosave immediately"),
	), s.handleSaveNow)

	// ── get_save_state ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_save_state",
		mcp.WithDescription("Report the autosave state of the open document"),
	), s.handleGetSaveState)

	// ── import_file ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("import_file",
		mcp.WithDescription("Import a CSV or JSON block sequence file into the open document"),
		mcp.WithString("path", mcp.Description("Path to the file"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Splice index (default: end of document)")),
	), s.handleImportFile)
}

func boolPtr(v bool) *bool { return &v }

// ── handlers ───────────────────────────────────────────────

func (s *Server) handleInsertBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	tag, _ := args["type"].(string)
	if tag == "" {
		return nil, fmt.Errorf("type is required")
	}

	// Parse the payload before touching the document, so a malformed or
	// rejected payload never leaves a default block behind.
	var data domain.BlockData
	if raw, ok := args["data"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, fmt.Errorf("parse data: %w", err)
		}
	}
	index := getInt(args, "index", len(es.Blocks()))
	if index < 0 {
		index = 0
	}

	if err := es.SpliceBlocks([]domain.BlockInput{{Type: tag, Data: data}}, index); err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	blocks := es.Blocks()
	if index >= len(blocks) {
		index = len(blocks) - 1
	}
	return textResult(fmt.Sprintf("Inserted %s block %s at index %d", tag, blocks[index].ID, index)), nil
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	raw, _ := args["data"].(string)
	if blockID == "" || raw == "" {
		return nil, fmt.Errorf("blockId and data are required")
	}
	var data domain.BlockData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	if err := es.UpdateBlock(blockID, data); err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	return textResult(fmt.Sprintf("Block %s updated", blockID)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	index := getInt(args, "index", 0)
	if err := es.MoveBlock(blockID, index); err != nil {
		return nil, fmt.Errorf("move block: %w", err)
	}
	return textResult(fmt.Sprintf("Block %s moved to index %d", blockID, index)), nil
}

func (s *Server) handleRemoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	blockID, _ := args["blockId"].(string)
	if blockID == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	if err := es.RemoveBlock(blockID); err != nil {
		return nil, fmt.Errorf("remove block: %w", err)
	}
	return textResult(fmt.Sprintf("Block %s removed", blockID)), nil
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	doc, err := es.ExtractAll()
	if err != nil {
		return nil, err
	}
	type blockView struct {
		ID    string           `json:"id"`
		Type  string           `json:"type"`
		Order int              `json:"order"`
		Data  domain.BlockData `json:"data"`
	}
	blocks := es.Blocks()
	views := make([]blockView, len(doc.Blocks))
	for i, b := range doc.Blocks {
		views[i] = blockView{ID: blocks[i].ID, Type: b.Type, Order: b.Order, Data: b.Data}
	}
	return jsonResult(views)
}

func (s *Server) handleGetPreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	return textResult(es.PreviewMarkup()), nil
}

func (s *Server) handleListBlockTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.registry.Tags())
}

func (s *Server) handleSaveNow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	es.SaveNow()
	return textResult("Save requested"), nil
}

func (s *Server) handleGetSaveState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	return jsonResult(es.SaveState())
}

func (s *Server) handleImportFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	es, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	inputs, err := importer.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	index := getInt(args, "index", len(es.Blocks()))
	if err := es.SpliceBlocks(inputs, index); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	return textResult(fmt.Sprintf("Imported %d blocks at index %d", len(inputs), index)), nil
}
