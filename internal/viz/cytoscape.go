// Package viz renders a graph payload as a standalone HTML preview.
package viz

import (
	"encoding/json"
	"fmt"

	"github.com/matsen/researchgraph/internal/graph"
)

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format. Position carries
// the ring layout so the preset layout reproduces it.
type CytoscapeNode struct {
	Data     CytoscapeNodeData `json:"data"`
	Position graph.Position    `json:"position"`
}

// CytoscapeNodeData contains the node data fields.
type CytoscapeNodeData struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Year          int    `json:"year,omitempty"`
	Abstract      string `json:"abstract,omitempty"`
	CitationCount int    `json:"citationCount"`
	IsSeed        bool   `json:"isSeed"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains the edge data fields.
type CytoscapeEdgeData struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Label    string  `json:"label"`
	Type     string  `json:"type"`
	Directed bool    `json:"directed"`
	Weight   float64 `json:"weight"`
}

// ToCytoscape converts a payload to Cytoscape.js elements.
func ToCytoscape(p *graph.Payload) CytoscapeElements {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(p.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(p.Edges)),
	}

	for _, n := range p.Nodes {
		data := CytoscapeNodeData{
			ID:            n.ID,
			Label:         n.Data.Label,
			Abstract:      n.Data.Abstract,
			CitationCount: n.Data.CitationCount,
			IsSeed:        n.Data.IsSeed,
		}
		if n.Data.Year != nil {
			data.Year = *n.Data.Year
		}
		elements.Nodes = append(elements.Nodes, CytoscapeNode{Data: data, Position: n.Position})
	}

	for _, e := range p.Edges {
		elements.Edges = append(elements.Edges, CytoscapeEdge{
			Data: CytoscapeEdgeData{
				ID:       e.ID,
				Source:   e.Source,
				Target:   e.Target,
				Label:    e.Label,
				Type:     string(e.Type),
				Directed: e.Directed,
				Weight:   e.Weight,
			},
		})
	}

	return elements
}

// ToCytoscapeJSON converts a payload to Cytoscape.js JSON.
func ToCytoscapeJSON(p *graph.Payload) (string, error) {
	jsonBytes, err := json.Marshal(ToCytoscape(p))
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}
