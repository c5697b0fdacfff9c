package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/researchgraph/internal/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8000)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Endpoints:
  GET  /build_graph?paper_id=ID&width=W&height=H
  GET  /search?q=TEXT&limit=N
  POST /summarize_connection
  POST /explain_abstract
  GET  /health
  GET  /metrics

Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := mustOpenApp(ctx, true)
	defer a.Close()

	addr := a.cfg.Listen
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := api.NewServer(a.builder, a.src, a.llm, api.Options{
		Addr:        addr,
		CORSOrigins: a.cfg.CORSOrigins,
		Logger:      a.logger,
	})
	if err := srv.ListenAndServe(ctx); err != nil {
		a.logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
