package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/prompts"
)

func (s *Server) registerReadTools() {
	s.mcp.AddTool(mcp.NewTool("list_prompts",
		mcp.WithDescription("List every prompt block with its current version, tier and whether it is overridden"),
		mcp.WithString("category", mcp.Description("Only blocks in this category (optional)")),
		mcp.WithString("source", mcp.Description("Only blocks from this source: v2-core, legacy, chat-library or custom (optional)")),
	), s.handleListPrompts)

	s.mcp.AddTool(mcp.NewTool("get_prompt",
		mcp.WithDescription("Get one prompt block by id, including its default content when overridden"),
		mcp.WithString("id", mcp.Description("Block id"), mcp.Required()),
	), s.handleGetPrompt)

	s.mcp.AddTool(mcp.NewTool("resolve_blocks",
		mcp.WithDescription("Resolve block ids to their effective content. Unknown ids are listed under missing."),
		mcp.WithArray("ids",
			mcp.Description("Block ids to resolve"),
			mcp.Required(),
			mcp.WithStringItems(),
		),
	), s.handleResolveBlocks)

	s.mcp.AddTool(mcp.NewTool("prompt_history",
		mcp.WithDescription("List the recorded versions of a block, oldest first"),
		mcp.WithString("id", mcp.Description("Block id"), mcp.Required()),
	), s.handlePromptHistory)

	s.mcp.AddTool(mcp.NewTool("build_composition",
		mcp.WithDescription("Assemble a catalog composition into one prompt document"),
		mcp.WithString("id", mcp.Description("Composition id"), mcp.Required()),
		mcp.WithString("libraryId", mcp.Description("Library whose context is appended (optional, overrides the composition default)")),
		mcp.WithString("variantContext", mcp.Description("Variant context to prefer, e.g. chat (optional)")),
	), s.handleBuildComposition)
}

func (s *Server) registerWriteTools() {
	s.mcp.AddTool(mcp.NewTool("update_prompt",
		mcp.WithDescription("Replace the content of a block, recording a new version. The first edit of a catalog block creates its override at version 2."),
		mcp.WithString("id", mcp.Description("Block id"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New content"), mcp.Required()),
		mcp.WithString("commitMessage", mcp.Description("Why the block changed"), mcp.Required()),
		mcp.WithString("actor", mcp.Description("Who made the change (optional)")),
	), s.handleUpdatePrompt)
}

func (s *Server) handleListPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := prompts.ListFilter{
		Category: req.GetString("category", ""),
		Source:   catalog.Source(req.GetString("source", "")),
	}
	list, err := s.engine().ListAll(ctx, filter)
	if err != nil {
		return engineError(err)
	}

	type promptSummary struct {
		ID          string         `json:"id"`
		Title       string         `json:"title"`
		Tier        catalog.Tier   `json:"tier"`
		Source      catalog.Source `json:"source"`
		Version     int            `json:"version"`
		HasOverride bool           `json:"hasOverride"`
	}
	out := make([]promptSummary, 0, len(list))
	for _, p := range list {
		out = append(out, promptSummary{
			ID:          p.ID,
			Title:       p.Title,
			Tier:        p.Tier,
			Source:      p.Source,
			Version:     p.Version,
			HasOverride: p.HasOverride,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleGetPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	p, err := s.engine().GetBySlug(ctx, id)
	if err != nil {
		return engineError(err)
	}
	return jsonResult(p)
}

func (s *Server) handleResolveBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := stringSlice(req.GetArguments(), "ids")
	if len(ids) == 0 {
		return mcp.NewToolResultError("ids must list at least one block id"), nil
	}
	blocks, err := s.engine().ResolveBlocks(ctx, ids)
	if err != nil {
		return engineError(err)
	}

	found := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		found[b.ID] = true
	}
	missing := []string{}
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
			found[id] = true
		}
	}

	return jsonResult(map[string]any{
		"blocks":  blocks,
		"missing": missing,
	})
}

func (s *Server) handlePromptHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	// GetBySlug first so an unknown id is an error rather than empty history.
	if _, err := s.engine().GetBySlug(ctx, id); err != nil {
		return engineError(err)
	}
	versions, err := s.engine().History(ctx, id)
	if err != nil {
		return engineError(err)
	}
	return jsonResult(versions)
}

func (s *Server) handleBuildComposition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	result, err := s.engine().BuildCompositionByID(ctx, id, prompts.BuildOptions{
		LibraryID:      req.GetString("libraryId", ""),
		VariantContext: req.GetString("variantContext", ""),
	})
	if err != nil {
		return engineError(err)
	}

	text := result.Text
	if len(result.MissingBlockIDs) > 0 {
		text += fmt.Sprintf("\n\n<!-- missing blocks: %s -->", strings.Join(result.MissingBlockIDs, ", "))
	}
	return textResult(text), nil
}

func (s *Server) handleUpdatePrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	args := req.GetArguments()
	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}

	p, err := s.engine().Update(ctx, id, prompts.UpdateInput{
		Content:       &content,
		CommitMessage: req.GetString("commitMessage", ""),
		Actor:         req.GetString("actor", "mcp"),
	})
	if err != nil {
		return engineError(err)
	}
	s.logger.Info("prompt updated over MCP", "id", p.ID, "version", p.Version)
	return jsonResult(p)
}
