// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes lexicon tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lexicon/internal/apperr"
	"github.com/starford/lexicon/internal/termservice"
)

const layoutURI = "lexicon://layout"

// Server wraps the MCP server with lexicon tools.
type Server struct {
	mcp *server.MCPServer
	svc *termservice.Service
}

// New creates a new MCP server with all lexicon tools registered.
func New(svc *termservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lexicon",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_term",
		mcp.WithDescription("Look up a vocabulary term by exact name. Returns its description and, for parent terms, the names of its children."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Exact, case-sensitive term name")),
	), s.searchTerm)

	s.mcp.AddTool(mcp.NewTool("add_term",
		mcp.WithDescription("Add a term to the vocabulary. When parent is given and is still a leaf, "+
			"it is promoted to a parent term first. Read get_layout_contract for the naming rules."),
		mcp.WithString("name", mcp.Required(), mcp.Description("New term name (no path separators, not _index)")),
		mcp.WithString("description", mcp.Description("Description text; a trailing newline is added")),
		mcp.WithString("parent", mcp.Description("Optional name of an existing term to nest under")),
	), s.addTerm)

	s.mcp.AddTool(mcp.NewTool("list_terms",
		mcp.WithDescription("List every term in the vocabulary as an indented tree."),
	), s.listTerms)

	s.mcp.AddTool(mcp.NewTool("get_layout_contract",
		mcp.WithDescription("Returns the vocabulary layout and naming rules."),
	), s.getLayoutContract)

	s.mcp.AddResource(
		mcp.NewResource(layoutURI, "Vocabulary Layout",
			mcp.WithResourceDescription("How lexicon stores terms on disk and which names are allowed."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.SearchTerm(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrTermNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("term not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(info, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description := req.GetString("description", "")
	parent := req.GetString("parent", "")

	res, err := s.svc.AddTerm(ctx, name, description, parent)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", apperr.Kind(err), err)), nil
	}
	msg := "created: " + res.Path
	if res.Promoted {
		msg += fmt.Sprintf(" (promoted %s)", parent)
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) listTerms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodes, err := s.svc.Tree(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(nodes) == 0 {
		return mcp.NewToolResultText("vocabulary is empty"), nil
	}
	var b strings.Builder
	if err := termservice.WriteTree(&b, nodes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) getLayoutContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LayoutContract), nil
}

func (s *Server) readLayoutResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      layoutURI,
			MIMEType: "text/markdown",
			Text:     LayoutContract,
		},
	}, nil
}
