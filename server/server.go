// Package server exposes timetable search over HTTP.
//
// Routes:
//
//	GET  /healthz  liveness probe
//	POST /search   multipart form: file, mode (subject|teacher), q, sheet (optional)
//
// /search answers with the plain-text report, or with JSON when the client
// sends Accept: application/json. Every request runs the whole pipeline on
// the uploaded file; the server keeps no state between requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tsawler/timetable/schedule"
)

// Config configures a Server.
type Config struct {
	Columns       schedule.Columns
	HeaderCaption string
	Strict        bool

	// Sheet is the worksheet read when a request names none
	// (default: the first sheet).
	Sheet string

	// MaxFileSize caps the uploaded timetable (default: 50 MB).
	MaxFileSize int64

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Columns.IsZero() {
		c.Columns = schedule.DefaultColumns()
	}
	if c.HeaderCaption == "" {
		c.HeaderCaption = schedule.DefaultHeaderCaption
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server serves timetable searches.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router chi.Router
}

// New creates a Server with its routes registered.
func New(cfg Config) *Server {
	cfg.defaults()
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/search", s.handleSearch)

	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
