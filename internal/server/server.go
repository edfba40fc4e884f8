package server

import (
	"context"
	"fmt"
	"net/http"
	"podbrief/internal/config"
	"podbrief/internal/core"
	"podbrief/internal/logger"
	"podbrief/internal/pipeline"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Runner is the pipeline as seen by the HTTP layer
type Runner interface {
	TryRun(ctx context.Context) (core.RunResult, error)
	Status() pipeline.Status
}

// Server represents the HTTP trigger server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	runner     Runner
	metrics    http.Handler
	config     config.Server
	log        zerolog.Logger

	// Background runs started by POST /api/run outlive their request
	baseCtx context.Context
	cancel  context.CancelFunc
	runs    sync.WaitGroup
}

// New creates a new HTTP server instance. metrics may be nil.
func New(runner Runner, metrics http.Handler, cfg config.Server) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())

	s := &Server{
		router:  chi.NewRouter(),
		runner:  runner,
		metrics: metrics,
		config:  cfg,
		log:     logger.With("component", "server"),
		baseCtx: baseCtx,
		cancel:  cancel,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Group(func(r chi.Router) {
			r.Use(s.requireTriggerToken)
			r.Post("/run", s.handleRun)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.httpServer.Addr).
		Dur("read_timeout", s.config.ReadTimeout).
		Dur("write_timeout", s.config.WriteTimeout).
		Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown stops accepting requests, cancels background runs and waits
// for them to return.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server gracefully...")

	err := s.httpServer.Shutdown(ctx)
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("Background run did not stop before the shutdown deadline")
	}

	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info().Msg("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
