package main

import (
	"context"
	"fmt"

	"github.com/matsen/researchgraph/internal/cache"
	"github.com/spf13/cobra"
)

var purgeExpiredOnly bool

func init() {
	cachePurgeCmd.Flags().BoolVar(&purgeExpiredOnly, "expired", false, "Only drop entries past their TTL")
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the lookup cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop cached lookups",
	Long: `Drop cached lookups.

By default every entry is removed. With --expired only entries past their TTL
are removed; the memory and redis backends expire entries on their own, so
this only reclaims space in the sqlite cache.`,
	Args:  cobra.NoArgs,
	RunE:  runCachePurge,
}

// CacheResponse is the response for cache commands.
type CacheResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Removed *int64 `json:"removed,omitempty"`
	Path    string `json:"path,omitempty"`
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := mustOpenApp(ctx, false)
	defer a.Close()

	resp := CacheResponse{
		Status:  "purged",
		Backend: a.store.Backend(),
		Path:    a.cfg.CacheOptions().Path,
	}

	if purgeExpiredOnly {
		n, err := cache.PruneExpired(ctx, a.store)
		if err != nil {
			return fmt.Errorf("pruning %s cache: %w", a.store.Backend(), err)
		}
		resp.Status = "pruned"
		resp.Removed = &n
	} else if err := a.store.Purge(ctx); err != nil {
		return fmt.Errorf("purging %s cache: %w", a.store.Backend(), err)
	}

	if humanOutput {
		if resp.Removed != nil {
			fmt.Printf("Pruned %d expired entries from %s cache\n", *resp.Removed, resp.Backend)
		} else {
			fmt.Printf("Purged %s cache\n", resp.Backend)
		}
		return nil
	}
	return outputJSON(resp)
}
