// Package server exposes the layout and render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz             liveness probe
//	GET  /version             build information
//	POST /v1/layout           items → cloud JSON
//	POST /v1/render?format=   items → SVG, PNG, PDF or cloud JSON
//
// Both POST routes take the same body. Exactly one of "items",
// "frequencies" or "report" must be present:
//
//	{
//	  "items": [{"label": "lol", "weight": 50}],
//	  "frequencies": {"lol": 50, "ok": 30},
//	  "report": {"aggregate": {"word_frequency": {...}}},
//	  "source": "words",
//	  "options": {"max_items": 20, "style": "handdrawn"}
//	}
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} with a
// status derived from the error code.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/wordbubbles/pkg/pipeline"
)

// Config configures a [Server].
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// MaxBodyBytes bounds request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
	// RequestTimeout bounds each request. Zero means no deadline.
	RequestTimeout time.Duration
	// ShutdownTimeout is how long in-flight requests may take to finish
	// once the server is asked to stop.
	ShutdownTimeout time.Duration
	// Defaults are the pipeline options requests start from.
	Defaults pipeline.Options
}

const defaultMaxBodyBytes = 1 << 20

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	cfg     Config
	handler http.Handler
}

// New creates a Server around runner. The runner's cache is shared by all
// requests.
func New(runner *pipeline.Runner, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{runner: runner, logger: logger, cfg: cfg}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errMethodNotAllowed(r))
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Use(limitBody(s.cfg.MaxBodyBytes))
		r.Use(timeout(s.cfg.RequestTimeout))
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("API listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// defaults returns a copy of the configured options that a request can
// decode into without touching the shared value.
func (s *Server) defaults() pipeline.Options {
	opts := s.cfg.Defaults
	opts.Formats = slices.Clone(opts.Formats)
	if opts.Padding != nil {
		p := *opts.Padding
		opts.Padding = &p
	}
	opts.Logger = s.logger
	return opts
}
