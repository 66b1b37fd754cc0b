package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jackzampolin/promptshelf/internal/catalog"
)

const (
	compositionsURI = "promptshelf://compositions"
	librariesURI    = "promptshelf://libraries"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource(
		compositionsURI,
		"Compositions",
		mcp.WithResourceDescription("Catalog compositions and the blocks they assemble"),
		mcp.WithMIMEType("application/json"),
	), s.handleCompositionsResource)

	s.mcp.AddResource(mcp.NewResource(
		librariesURI,
		"Libraries",
		mcp.WithResourceDescription("Libraries whose context can be appended to a composition"),
		mcp.WithMIMEType("application/json"),
	), s.handleLibrariesResource)
}

func (s *Server) handleCompositionsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(compositionsURI, s.services().Catalog.Compositions())
}

func (s *Server) handleLibrariesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type librarySummary struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ContextID string `json:"contextId"`
	}

	cat := s.services().Catalog
	out := []librarySummary{}
	for _, lib := range cat.Libraries() {
		out = append(out, librarySummary{ID: lib.ID, Name: lib.Name, ContextID: catalog.LibraryContextID(lib.ID)})
	}
	return jsonResource(librariesURI, out)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
