// Package server exposes the book collection over HTTP: routing, RFC 7807
// error responses, request logging, rate limiting, and Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/halcyonforge/bookvault/internal/books"
	"github.com/halcyonforge/bookvault/internal/version"
)

// Options tunes the HTTP layer. The zero value disables rate limiting.
type Options struct {
	// RateLimit is the sustained requests-per-second budget per client IP;
	// zero or below disables the limiter.
	RateLimit float64
	// RateBurst is the instantaneous burst budget per client IP.
	RateBurst int
}

// Server is the BookVault HTTP server.
type Server struct {
	httpServer *http.Server
	books      *books.Service
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a Server serving the books API on addr.
func New(addr string, svc *books.Service, logger *zap.Logger, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		books:  svc,
		logger: logger,
		mux:    mux,
	}
	s.registerRoutes()

	handler := http.Handler(mux)
	if opts.RateLimit > 0 {
		handler = rateLimit(opts.RateLimit, opts.RateBurst)(handler)
	}
	handler = requestMetrics(handler)
	handler = requestLogger(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// registerRoutes sets up the API routes. The bare-path patterns catch
// methods the method-qualified ones leave unmatched, so unsupported methods
// get a problem+json 405 instead of the mux default.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/books", s.handleListBooks)
	s.mux.HandleFunc("POST /api/books", s.handleCreateBooks)
	s.mux.HandleFunc("/api/books", s.handleMethodNotAllowed)

	s.mux.HandleFunc("PUT /api/books/{id}", s.handleUpdateBook)
	s.mux.HandleFunc("DELETE /api/books/{id}", s.handleDeleteBook)
	s.mux.HandleFunc("/api/books/{id}", s.handleMethodNotAllowed)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("X-BookVault-Version", version.Short())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "bookvault",
		"version": version.Map(),
	})
}
