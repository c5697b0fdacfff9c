package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matsen/researchgraph/internal/graph"
	"github.com/matsen/researchgraph/internal/viz"
	"github.com/spf13/cobra"
)

var (
	graphWidth     int
	graphHeight    int
	graphHTML      string
	graphLayout    string
	graphMinWeight float64
)

func init() {
	graphCmd.Flags().IntVar(&graphWidth, "width", graph.DefaultCanvas, "Canvas width")
	graphCmd.Flags().IntVar(&graphHeight, "height", graph.DefaultCanvas, "Canvas height")
	graphCmd.Flags().StringVar(&graphHTML, "html", "", "Also write an interactive HTML preview to this file")
	graphCmd.Flags().StringVar(&graphLayout, "layout", "preset", "Preview layout: preset (ring positions), force, or circle")
	graphCmd.Flags().Float64Var(&graphMinWeight, "min-weight", 0, "Initial edge weight threshold in the preview")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph <paper-id>",
	Short: "Build the citation neighborhood of a paper",
	Long: `Build the citation neighborhood of a paper.

The seed sits at the canvas center; neighbors are placed on rings, strongest
first. Edge weights are bibliographic coupling strengths in [0, 1].

Examples:
  rgraph graph W2741809807
  rgraph graph DOI:10.1038/nature14539 --html graph.html
  rgraph graph 649def34f8be52c8b66281af98ae884c09aef38b --width 800 --height 600`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustOpenApp(ctx, false)
	defer a.Close()

	payload, err := a.builder.Build(ctx, args[0], graphWidth, graphHeight)
	if err != nil {
		a.Close()
		exitWithError(exitCodeFor(err), "building graph for %s: %v", args[0], err)
	}

	if graphHTML != "" {
		html, err := viz.GenerateHTML(payload, viz.HTMLOptions{
			Layout:    graphLayout,
			MinWeight: graphMinWeight,
		})
		if err != nil {
			return fmt.Errorf("generating HTML: %w", err)
		}
		if err := os.WriteFile(graphHTML, []byte(html), 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	}

	if humanOutput {
		printGraphHuman(payload)
		if graphHTML != "" {
			fmt.Printf("\nVisualization written to %s\n", graphHTML)
		}
		return nil
	}
	return outputJSON(payload)
}

// printGraphHuman lists the seed and its neighbors by edge weight.
func printGraphHuman(p *graph.Payload) {
	seed := p.Seed()
	if seed == nil {
		fmt.Println("No papers found.")
		return
	}
	fmt.Printf("%s  %s\n", seed.ID, truncateString(seed.Data.Label, SearchTitleMaxLen))
	if len(p.Edges) == 0 {
		fmt.Println("  (no connected papers)")
		return
	}

	labels := make(map[string]string, len(p.Nodes))
	for _, n := range p.Nodes {
		labels[n.ID] = n.Data.Label
	}
	for _, e := range p.Edges {
		if e.Source != seed.ID && e.Target != seed.ID {
			continue
		}
		other := e.Target
		if other == seed.ID {
			other = e.Source
		}
		fmt.Printf("  [%s] %-8s %s  %s\n", e.Label, e.Type, other, truncateString(labels[other], SearchTitleMaxLen))
	}
	fmt.Printf("\n%d papers, %d edges\n", len(p.Nodes), len(p.Edges))
}
