// Package server exposes the analysis over HTTP.  Workbooks are uploaded as multipart forms and Google Sheets
// are referenced by URL; both return the per-parameter results with their charts as JSON.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BTBurke/westgard/pkg/ingest"
	"github.com/BTBurke/westgard/pkg/metric"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxUpload bounds the size of an uploaded workbook
const DefaultMaxUpload int64 = 32 << 20

// ErrorReporter receives unexpected errors raised while serving a request
type ErrorReporter interface {
	ReportError(err error)
}

type noopReporter struct{}

func (noopReporter) ReportError(error) {}

// Config holds configuration for the server
type Config struct {
	Addr      string
	Loader    *ingest.Loader
	Reporter  ErrorReporter
	Logger    *slog.Logger
	MaxUpload int64
}

// Server serves the analysis API
type Server struct {
	addr      string
	loader    *ingest.Loader
	errors    ErrorReporter
	logger    *slog.Logger
	maxUpload int64

	analyses *metric.Counter
	flagged  *metric.Counter
	recent   *metric.WindowedCounter
}

// New creates a server.  Without a loader one with the default caches and sheets client is used.
func New(cfg Config) *Server {
	s := &Server{
		addr:      cfg.Addr,
		loader:    cfg.Loader,
		errors:    cfg.Reporter,
		logger:    cfg.Logger,
		maxUpload: cfg.MaxUpload,
		analyses:  metric.NewCounter(),
		flagged:   metric.NewCounter(),
		recent:    metric.NewWindowedCounter(time.Hour, metric.WithHistory(24)),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.errors == nil {
		s.errors = noopReporter{}
	}
	if s.loader == nil {
		client, _ := ingest.NewSheetsClient(ingest.WithSheetsLogger(s.logger))
		s.loader = ingest.NewLoader(client, s.logger)
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	return s
}

// Handler returns the routes of the API
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		s.requestID,
		s.logRequests,
		s.recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/charts", s.handleCharts)
		r.Post("/sheets", s.handleSheets)
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
