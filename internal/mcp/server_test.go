package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/matsen/researchgraph/internal/graph"
	"github.com/matsen/researchgraph/internal/paper"
	"github.com/matsen/researchgraph/internal/source"
)

type stubSource struct{}

var papers = map[string]paper.Paper{
	"A": {ID: "A", Title: "Alpha", Year: 2020, ReferenceIDs: []string{"B"}},
	"B": {ID: "B", Title: "Beta", Year: 2010},
}

func (stubSource) Name() string { return "stub" }

func (stubSource) GetPaper(ctx context.Context, id string) (*paper.Paper, error) {
	p, ok := papers[id]
	if !ok {
		return nil, source.ErrNotFound
	}
	return &p, nil
}

func (stubSource) GetReferences(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	if id == "A" {
		return []paper.Paper{papers["B"]}, nil
	}
	return nil, nil
}

func (stubSource) GetCitations(ctx context.Context, id string, limit int) ([]paper.Paper, error) {
	return nil, nil
}

func (stubSource) SearchByText(ctx context.Context, query string, limit int) ([]paper.Paper, error) {
	return []paper.Paper{papers["A"], papers["B"]}[:min(limit, 2)], nil
}

func newTestServer() *Server {
	src := stubSource{}
	return NewServer(graph.NewBuilder(src, graph.DefaultOptions(), nil), src)
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestMCPServer_BuildGraph(t *testing.T) {
	s := newTestServer()

	result, err := s.handleBuildGraph(context.Background(), callTool("build_graph", map[string]any{
		"paper_id": "A",
		"width":    800,
		"height":   600,
	}))
	if err != nil {
		t.Fatalf("handleBuildGraph failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %s", resultText(t, result))
	}

	var payload graph.Payload
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("Failed to parse result JSON: %v", err)
	}
	if len(payload.Nodes) != 2 || len(payload.Edges) != 1 {
		t.Errorf("payload = %+v", payload)
	}
	if seed := payload.Seed(); seed == nil || seed.Position.X != 400 {
		t.Errorf("seed = %+v", seed)
	}
}

func TestMCPServer_BuildGraphErrors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing id", map[string]any{}, "paper_id is required"},
		{"not found", map[string]any{"paper_id": "Z"}, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleBuildGraph(context.Background(), callTool("build_graph", tt.args))
			if err != nil {
				t.Fatalf("handleBuildGraph failed: %v", err)
			}
			if !result.IsError {
				t.Error("Expected error result")
			}
			if text := resultText(t, result); !strings.Contains(text, tt.want) {
				t.Errorf("text = %q, want containing %q", text, tt.want)
			}
		})
	}
}

func TestMCPServer_Search(t *testing.T) {
	s := newTestServer()

	result, err := s.handleSearch(context.Background(), callTool("search_papers", map[string]any{
		"query": "alpha",
		"limit": 1,
	}))
	if err != nil {
		t.Fatalf("handleSearch failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success")
	}

	var body struct {
		Results []struct {
			PaperID string `json:"paperId"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &body); err != nil {
		t.Fatalf("Failed to parse result JSON: %v", err)
	}
	if len(body.Results) != 1 || body.Results[0].PaperID != "A" {
		t.Errorf("results = %+v", body.Results)
	}
}

func TestMCPServer_Prompt(t *testing.T) {
	s := newTestServer()

	req := mcp.GetPromptRequest{}
	req.Params.Name = "citation-explorer"
	result, err := s.handleGetPrompt(context.Background(), req)
	if err != nil {
		t.Fatalf("handleGetPrompt failed: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Errorf("Expected 1 message, got %d", len(result.Messages))
	}

	req.Params.Name = "unknown"
	if _, err := s.handleGetPrompt(context.Background(), req); err == nil {
		t.Error("Expected error for unknown prompt")
	}
}
