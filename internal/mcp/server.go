// Package mcp exposes graph builds and paper search to agents over the Model
// Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matsen/researchgraph/internal/graph"
	"github.com/matsen/researchgraph/internal/source"
)

const (
	serverName    = "researchgraph"
	serverVersion = "1.0.0"

	defaultSearchLimit = 5
	maxSearchLimit     = 25
)

// Server adapts the graph builder to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	builder   *graph.Builder
	src       source.Source
}

// NewServer creates a new MCP server instance.
func NewServer(builder *graph.Builder, src source.Source) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(serverName, serverVersion),
		builder:   builder,
		src:       src,
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"build_graph",
		mcp.WithDescription("Build the weighted citation neighborhood of a seed paper. Returns nodes with positions and edges whose weight is bibliographic coupling strength."),
		mcp.WithString("paper_id", mcp.Required(), mcp.Description("Paper identifier (OpenAlex W-id, Semantic Scholar id, DOI:..., ARXIV:...)")),
		mcp.WithNumber("width", mcp.Description("Canvas width (default 1000)")),
		mcp.WithNumber("height", mcp.Description("Canvas height (default 1000)")),
	), s.handleBuildGraph)

	s.mcpServer.AddTool(mcp.NewTool(
		"search_papers",
		mcp.WithDescription("Search papers by title or free text. The first result is the best match."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 5, max 25)")),
	), s.handleSearch)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"citation-explorer",
		mcp.WithPromptDescription("Explains how to read researchgraph output"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleBuildGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paperID := mcp.ParseString(request, "paper_id", "")
	if paperID == "" {
		return mcp.NewToolResultError("paper_id is required"), nil
	}
	width := mcp.ParseInt(request, "width", graph.DefaultCanvas)
	height := mcp.ParseInt(request, "height", graph.DefaultCanvas)

	payload, err := s.builder.Build(ctx, paperID, width, height)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := mcp.ParseString(request, "query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	limit := mcp.ParseInt(request, "limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	papers, err := s.src.SearchByText(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type result struct {
		PaperID       string `json:"paperId"`
		Title         string `json:"title"`
		Year          int    `json:"year,omitempty"`
		CitationCount int    `json:"citationCount"`
	}
	results := make([]result, 0, len(papers))
	for _, p := range papers {
		results = append(results, result{PaperID: p.ID, Title: p.Title, Year: p.Year, CitationCount: p.CitationCount})
	}

	data, err := json.MarshalIndent(map[string]any{"results": results}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "citation-explorer" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You can explore the citation neighborhood of a research paper.

1. Use 'search_papers' to turn a title into a paper id. Take the first result.
2. Use 'build_graph' with that id.

Reading the graph:
- The node with isSeed=true is the paper you asked about.
- Edges of type "citation" are direct references or citers; their weight is never below 0.30.
- Edges of type "coupling" link papers that share references; weight is the
  shared fraction of the smaller reference list.
- Nodes closer to the seed are more strongly related.
`

	return mcp.NewGetPromptResult(
		"citation-explorer",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
