package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"savewise/internal/api/health"
	"savewise/internal/metrics"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewRouter builds the route table. Split from NewServer so tests can drive
// it through httptest.
func NewRouter(cfg ServerConfig, healthHandler *health.Handler, handlers *Handlers, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("GET /health", healthHandler.HandleHealth)
	mux.HandleFunc("GET /ready", healthHandler.HandleReadiness)
	mux.HandleFunc("GET /live", healthHandler.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("GET /metrics", metrics.Handler())

	// Prediction API
	mux.HandleFunc("POST /api/predict", handlers.Predict)
	mux.HandleFunc("GET /api/data", handlers.Data)
	mux.HandleFunc("GET /api/health", handlers.Health)
	mux.HandleFunc("POST /api/chat", handlers.Chat)
	mux.HandleFunc("POST /api/chat/", handlers.Chat)
	mux.HandleFunc("GET /api/{$}", handlers.Info)

	// Root endpoint (service info)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	return withRecovery(log, withLogging(log, withCORS(mux)))
}

// NewServer creates and configures HTTP server with all routes
func NewServer(cfg ServerConfig, healthHandler *health.Handler, handlers *Handlers, log *logger.Logger) *Server {
	log = log.Component("http")

	port := 5000
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewRouter(cfg, healthHandler, handlers, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // chat replies wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
