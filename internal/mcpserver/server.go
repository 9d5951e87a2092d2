// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only writing-vault tools for LLM integration via stdio
// transport. The vault has no writer, so no mutating tools exist.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/postservice"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	svc *postservice.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *postservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List writing posts, optionally filtered by topic or folder."),
		mcp.WithString("topic", mcp.Description("Optional topic filter (case-insensitive exact match)")),
		mcp.WithString("folder", mcp.Description("Optional folder filter (hierarchical prefix match)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read a single post by slug, including its rendered content."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (e.g. my-first-post)")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles, bodies, and topics."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all posts whose body wikilinks to the given post, with surrounding context."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Slug of the post to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List every topic in the vault with its post count."),
	), s.listTopics)

	// Resource: vault post format.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://post-format", "Post Format",
			mcp.WithResourceDescription("The markdown post format the writing vault follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
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

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := req.GetString("topic", "")
	folder := req.GetString("folder", "")

	var (
		posts []*postSummary
		err   error
	)
	switch {
	case topic != "":
		posts, err = s.summaries(s.svc.PostsByTopic(ctx, topic))
	case folder != "":
		posts, err = s.summaries(s.svc.PostsByFolder(ctx, folder))
	default:
		posts, err = s.summaries(s.svc.ListPosts(ctx))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(posts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.GetPost(ctx, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(post, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.BacklinksFor(ctx, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	out, _ := json.MarshalIndent(bl, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topics, err := s.svc.Topics(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, t := range topics {
		lines = append(lines, fmt.Sprintf("%s (%d)", t.Topic, t.Count))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no topics"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}

// postSummary is the compact list shape returned to MCP clients.
type postSummary struct {
	Slug   string   `json:"slug"`
	Title  string   `json:"title"`
	Date   string   `json:"date"`
	Topics []string `json:"topics"`
	Folder string   `json:"folder"`
}

func (s *Server) summaries(posts []*models.Post, err error) ([]*postSummary, error) {
	if err != nil {
		return nil, err
	}
	out := make([]*postSummary, len(posts))
	for i, p := range posts {
		out[i] = &postSummary{
			Slug:   p.Slug,
			Title:  p.Title,
			Date:   p.Date,
			Topics: p.Topics,
			Folder: p.FolderPath,
		}
	}
	return out, nil
}
