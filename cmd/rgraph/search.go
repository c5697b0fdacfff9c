package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// DefaultSearchLimit is the default number of search results.
const DefaultSearchLimit = 5

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", DefaultSearchLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find papers by title or free text",
	Long: `Find papers by title or free text.

The first result is the best match; pass its id to 'rgraph graph'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// SearchResult is a paper in search output.
type SearchResult struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Year          int    `json:"year,omitempty"`
	CitationCount int    `json:"citation_count"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchLimit <= 0 {
		exitWithError(ExitError, "--limit must be positive")
	}

	ctx := context.Background()
	a := mustOpenApp(ctx, false)
	defer a.Close()

	papers, err := a.src.SearchByText(ctx, args[0], searchLimit)
	if err != nil {
		a.Close()
		exitWithError(exitCodeFor(err), "searching %q: %v", args[0], err)
	}

	results := make([]SearchResult, 0, len(papers))
	for _, p := range papers {
		results = append(results, SearchResult{
			ID:            p.ID,
			Title:         p.Title,
			Year:          p.Year,
			CitationCount: p.CitationCount,
		})
	}

	if !humanOutput {
		return outputJSON(results)
	}
	if len(results) == 0 {
		fmt.Println("No papers found.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%d. %s\n", i+1, r.ID)
		fmt.Printf("   %s\n", truncateString(r.Title, SearchTitleMaxLen))
		if r.Year > 0 {
			fmt.Printf("   %d, %d citations\n\n", r.Year, r.CitationCount)
		} else {
			fmt.Printf("   %d citations\n\n", r.CitationCount)
		}
	}
	return nil
}
