package main

import (
	"context"

	"github.com/matsen/researchgraph/internal/mcp"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve graph tools over the Model Context Protocol on stdio",
	Long: `Serve graph tools over the Model Context Protocol on stdio.

Tools:
  build_graph    Build the citation neighborhood of a paper
  search_papers  Find papers by title or free text

Logs go to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a := mustOpenApp(context.Background(), true)
	defer a.Close()

	a.logger.Info("mcp server starting")
	return mcp.NewServer(a.builder, a.src).Serve()
}
