// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes docstamp tools for LLM integration via stdio transport.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docstamp/internal/apperr"
	"github.com/starford/docstamp/internal/docservice"
	"github.com/starford/docstamp/internal/models"
)

// HeaderFormatURI identifies the header format resource.
const HeaderFormatURI = "docstamp://header-format"

// Server wraps the MCP server with docstamp tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all docstamp tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"docstamp",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_corpus",
		mcp.WithDescription("Check that every document carries Version and LastUpdated near the top "+
			"and that the index document has unique DocIDs and FilePaths with an Owns: line per entry."),
	), s.validateCorpus)

	s.mcp.AddTool(mcp.NewTool("bump_headers",
		mcp.WithDescription("Increment Version and refresh LastUpdated on documents modified since their "+
			"recorded stamp. Without files or from_git every corpus document is scanned."),
		mcp.WithArray("files", mcp.Description("Document paths relative to the repository root"), mcp.WithStringItems()),
		mcp.WithBoolean("from_git", mcp.Description("Use files changed relative to HEAD (staged or unstaged)")),
		mcp.WithBoolean("force", mcp.Description("Bump even when the document is not stale")),
		mcp.WithBoolean("date_only", mcp.Description("Write LastUpdated as YYYY-MM-DD")),
		mcp.WithBoolean("dry_run", mcp.Description("Report what would change without writing")),
	), s.bumpHeaders)

	s.mcp.AddTool(mcp.NewTool("read_header",
		mcp.WithDescription("Read the current header of a document, whether it is stale, and its bump history."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. Context/System/Guide.md)")),
	), s.readHeader)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List corpus documents with their Version and LastUpdated values."),
		mcp.WithBoolean("stale_only", mcp.Description("Only list documents that need a bump")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_bump_history",
		mcp.WithDescription("Recorded header bumps, newest first."),
		mcp.WithString("path", mcp.Description("Optional document path (empty for the whole corpus)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records (default: 20)")),
	), s.getBumpHistory)

	s.mcp.AddTool(mcp.NewTool("get_header_contract",
		mcp.WithDescription("Returns the document header contract. "+
			"Call this before editing documents so headers stay machine-readable."),
	), s.getHeaderContract)

	// Resource: header format contract.
	s.mcp.AddResource(
		mcp.NewResource(HeaderFormatURI, "Header Format Contract",
			mcp.WithResourceDescription("Version/LastUpdated header and index entry format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readHeaderFormatResource,
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

func (s *Server) validateCorpus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Validate(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var buf bytes.Buffer
	_ = rep.Write(&buf)
	return mcp.NewToolResultText(strings.TrimRight(buf.String(), "\n")), nil
}

func (s *Server) bumpHeaders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := s.svc.Defaults()
	opts.Force = req.GetBool("force", opts.Force)
	opts.DateOnly = req.GetBool("date_only", opts.DateOnly)
	opts.DryRun = req.GetBool("dry_run", opts.DryRun)

	sel := docservice.Selection{
		Paths:   req.GetStringSlice("files", nil),
		FromGit: req.GetBool("from_git", false),
	}
	sum, err := s.svc.Bump(ctx, sel, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lines := make([]string, 0, len(sum.Results)+1)
	for _, r := range sum.Results {
		lines = append(lines, r.Message)
	}
	lines = append(lines, sum.String())
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readHeader(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(struct {
		Path        string              `json:"path"`
		Version     int                 `json:"version"`
		HasVersion  bool                `json:"has_version"`
		LastUpdated string              `json:"last_updated"`
		ModTime     time.Time           `json:"mod_time"`
		Stale       bool                `json:"stale"`
		Canonical   bool                `json:"canonical"`
		History     []models.BumpRecord `json:"history"`
	}{
		Path:        doc.Path,
		Version:     doc.Version,
		HasVersion:  doc.HasVersion,
		LastUpdated: doc.LastUpdated,
		ModTime:     doc.ModTime,
		Stale:       doc.Stale,
		Canonical:   doc.Canonical,
		History:     doc.History,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.ListDocuments(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	staleOnly := req.GetBool("stale_only", false)

	var lines []string
	for _, d := range docs {
		if staleOnly && !d.Stale {
			continue
		}
		version := "-"
		if d.HasVersion {
			version = fmt.Sprint(d.Version)
		}
		lastUpdated := d.LastUpdated
		if lastUpdated == "" {
			lastUpdated = "-"
		}
		line := fmt.Sprintf("%s\tVersion %s\tLastUpdated %s", d.Path, version, lastUpdated)
		if d.Stale {
			line += "\tstale"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getBumpHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs, err := s.svc.History(ctx, req.GetString("path", ""), req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(recs) == 0 {
		return mcp.NewToolResultText("no bumps recorded"), nil
	}
	out, _ := json.MarshalIndent(recs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getHeaderContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(HeaderFormatContract), nil
}

func (s *Server) readHeaderFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      HeaderFormatURI,
			MIMEType: "text/markdown",
			Text:     HeaderFormatContract,
		},
	}, nil
}
