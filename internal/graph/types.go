// Package graph builds the weighted citation neighborhood of a seed paper:
// candidate selection, bibliographic coupling scores, edge assembly, and the
// initial ring layout.
package graph

import (
	"fmt"
	"strconv"
)

// NodeTypeDefault is the node type the presentation layer renders as a plain card.
const NodeTypeDefault = "default"

// UntitledLabel is shown for papers the source returned without a title.
const UntitledLabel = "Untitled"

// EdgeType distinguishes direct citation links from shared-reference links.
type EdgeType string

const (
	EdgeCitation EdgeType = "citation"
	EdgeCoupling EdgeType = "coupling"
)

// Payload is the result of one build.
type Payload struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a paper projected into the visualization.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

// NodeData holds the fields shown in node cards and tooltips.
type NodeData struct {
	Label         string `json:"label"`
	Year          *int   `json:"year"` // null when unknown
	Abstract      string `json:"abstract"`
	CitationCount int    `json:"citationCount"`
	IsSeed        bool   `json:"isSeed"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a weighted relation between two nodes.
type Edge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Label    string   `json:"label"` // weight with two decimals
	Type     EdgeType `json:"type"`
	Directed bool     `json:"directed"`
	Weight   float64  `json:"weight"`
}

// Seed returns the seed node, or nil if the payload has none.
func (p *Payload) Seed() *Node {
	for i := range p.Nodes {
		if p.Nodes[i].Data.IsSeed {
			return &p.Nodes[i]
		}
	}
	return nil
}

// IsEmpty returns true if the payload holds only the seed.
func (p *Payload) IsEmpty() bool {
	return len(p.Nodes) <= 1 && len(p.Edges) == 0
}

// FormatWeight renders a weight the way edge labels carry it.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', 2, 64)
}

func edgeID(source, target string) string {
	return fmt.Sprintf("e%s-%s", source, target)
}
