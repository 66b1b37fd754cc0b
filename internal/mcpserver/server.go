// Package mcpserver exposes the prompt engine to agents over the Model
// Context Protocol: read and edit tools, the composition list as a resource
// and every catalog composition as a prompt.
package mcpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jackzampolin/promptshelf/internal/prompts"
	"github.com/jackzampolin/promptshelf/internal/svcctx"
	"github.com/jackzampolin/promptshelf/version"
)

// ServicesFunc returns the current services. The server calls it on every
// request so a reloaded catalog is picked up without restarting.
type ServicesFunc func() *svcctx.Services

// Server is the promptshelf MCP server.
type Server struct {
	mcp      *server.MCPServer
	services ServicesFunc
	logger   *slog.Logger
}

// New builds the MCP server. Compositions present in the catalog at this
// point are registered as prompts.
func New(services ServicesFunc, logger *slog.Logger) (*Server, error) {
	if services == nil || services() == nil {
		return nil, errors.New("mcpserver: services are not initialized")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		services: services,
		logger:   logger,
	}

	s.mcp = server.NewMCPServer(
		"promptshelf",
		version.GitRelease,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerReadTools()
	s.registerWriteTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func (s *Server) engine() *prompts.Engine {
	return s.services().Engine
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// engineError reports domain failures to the agent as a tool error so it can
// correct its call. Anything else is a protocol-level failure.
func engineError(err error) (*mcp.CallToolResult, error) {
	switch {
	case errors.Is(err, prompts.ErrNotFound),
		errors.Is(err, prompts.ErrVersionNotFound),
		errors.Is(err, prompts.ErrValidation),
		errors.Is(err, prompts.ErrInvalidOperation),
		errors.Is(err, prompts.ErrConflict):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return nil, err
	}
}

// stringSlice reads an array-of-strings argument.
func stringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

