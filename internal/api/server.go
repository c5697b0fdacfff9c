// Package api serves graph builds, search, and the text-generation helpers
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matsen/researchgraph/internal/graph"
	"github.com/matsen/researchgraph/internal/llm"
	"github.com/matsen/researchgraph/internal/source"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Addr        string
	CORSOrigins []string
	Logger      *zap.Logger
}

// Server is the HTTP surface.
type Server struct {
	builder *graph.Builder
	src     source.Source
	llm     *llm.Service
	logger  *zap.Logger
	opts    Options
}

// NewServer creates a server. llmSvc may be nil, in which case the
// text-generation endpoints answer with their "not configured" message.
func NewServer(builder *graph.Builder, src source.Source, llmSvc *llm.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if llmSvc == nil {
		llmSvc = llm.NewService(nil, opts.Logger)
	}
	return &Server{
		builder: builder,
		src:     src,
		llm:     llmSvc,
		logger:  opts.Logger,
		opts:    opts,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/", s.handleRoot)
	router.Get("/health", s.handleHealth)
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/build_graph", s.handleBuildGraph)
	router.Get("/search", s.handleSearch)
	router.Post("/summarize_connection", s.handleSummarize)
	router.Post("/explain_abstract", s.handleExplain)

	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.builder.Options().BuildTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("source", s.src.Name()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
