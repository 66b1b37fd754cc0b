package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jackzampolin/promptshelf/internal/prompts"
)

// registerPrompts exposes each catalog composition as an MCP prompt whose
// messages are the assembled composition.
func (s *Server) registerPrompts() {
	for _, comp := range s.services().Catalog.Compositions() {
		desc := comp.Description
		if desc == "" {
			desc = comp.Name
		}
		s.mcp.AddPrompt(mcp.NewPrompt(comp.ID,
			mcp.WithPromptDescription(desc),
			mcp.WithArgument("libraryId",
				mcp.ArgumentDescription("Library whose context is appended (optional)"),
			),
			mcp.WithArgument("variantContext",
				mcp.ArgumentDescription("Variant context to prefer (optional)"),
			),
		), s.handleCompositionPrompt)
	}
}

func (s *Server) handleCompositionPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	id := req.Params.Name
	comp, ok := s.services().Catalog.Composition(id)
	if !ok {
		return nil, fmt.Errorf("composition %s is no longer in the catalog", id)
	}

	result, err := s.engine().BuildComposition(ctx, comp, prompts.BuildOptions{
		LibraryID:      req.Params.Arguments["libraryId"],
		VariantContext: req.Params.Arguments["variantContext"],
	})
	if err != nil {
		return nil, err
	}

	return &mcp.GetPromptResult{
		Description: comp.Name,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: result.Text,
				},
			},
		},
	}, nil
}
