// Package main provides the rgraph CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	debugLog    bool
	configPath  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors (like missing required flags) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rgraph",
	Short: "Citation neighborhood graphs for research papers",
	Long: `rgraph builds the citation neighborhood of a seed paper.

Given a paper identifier it fetches the seed's references and citers, finds
papers that share references with it, scores every neighbor by bibliographic
coupling, and lays the result out in concentric rings.

Papers come from Semantic Scholar or OpenAlex. Lookups are cached.
All commands output JSON by default for AI agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env if present; real environment variables take precedence
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable development logging at debug level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/rgraph/config.yml)")
	rootCmd.Version = Version
}
