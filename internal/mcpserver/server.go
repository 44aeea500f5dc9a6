// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the clip tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/k-ymmt/save-slack-to-inkdrop/internal/clipservice"
	"github.com/k-ymmt/save-slack-to-inkdrop/internal/inkdrop"
)

// Server wraps the MCP server with clip tools.
type Server struct {
	mcp *server.MCPServer
	svc *clipservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *clipservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"save-slack-to-inkdrop",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_message",
		mcp.WithDescription("Resolve a Slack message permalink into its content and render it as markdown."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Slack message permalink (https://<team>.slack.com/archives/...)")),
	), s.resolveMessage)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List Inkdrop books (note containers) with the default book pre-selection."),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List Inkdrop tags with their colors."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("save_message",
		mcp.WithDescription("Resolve a Slack message permalink and save it as an Inkdrop note. "+
			"The note body follows the rendered format described by the "+
			"slack-note://note-format resource."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Slack message permalink")),
		mcp.WithString("book_id", mcp.Required(), mcp.Description("Target Inkdrop book id")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tag ids")),
	), s.saveMessage)

	// Resource: rendered note format.
	s.mcp.AddResource(
		mcp.NewResource("slack-note://note-format", "Rendered Note Format",
			mcp.WithResourceDescription("Markdown layout of notes produced from Slack messages."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

func (s *Server) resolveMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	preview, err := s.svc.Resolve(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(preview.Markdown), nil
}

func (s *Server) listBooks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books, def, err := s.svc.Books(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"books":           books,
		"default_book_id": def,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tags, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bookID, err := req.RequireString("book_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	if raw, rawErr := req.RequireString("tags"); rawErr == nil && raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	preview, err := s.svc.SaveMessage(ctx, clipservice.SaveMessageRequest{
		URL:    rawURL,
		BookID: bookID,
		Tags:   tags,
		Share:  inkdrop.SharePrivate,
		Status: inkdrop.StatusActive,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved to book %s:\n\n%s", bookID, preview.Markdown)), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "slack-note://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
