// Package server exposes the enhance pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/enhance"
	"github.com/jonathan/prompt-enhancer/internal/server/ratelimit"
)

// maxBodyBytes caps request bodies; project context can carry sizeable snippets.
const maxBodyBytes = 1 << 20

// Server is the HTTP front end of an enhance.Service.
type Server struct {
	httpServer  *http.Server
	service     *enhance.Service
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
}

// Config holds server configuration.
type Config struct {
	Port    int
	Service *enhance.Service
	Logger  *zap.Logger
	// RateLimit defaults to ratelimit.LoadConfig() when nil.
	RateLimit *ratelimit.Config
}

// New creates a server. It does not start listening.
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("server requires an enhance service")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limits := cfg.RateLimit
	if limits == nil {
		limits = ratelimit.LoadConfig()
	}

	s := &Server{
		service:     cfg.Service,
		rateLimiter: ratelimit.NewLimiter(limits),
		logger:      logger,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /enhance", s.handleEnhance)
	mux.HandleFunc("POST /enhance/stream", s.handleEnhanceStream)
	mux.HandleFunc("POST /classify", s.handleClassify)
	mux.HandleFunc("POST /decompose", s.handleDecompose)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start listens until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run listens until ctx is cancelled, then drains in-flight requests for up to 30 seconds.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work without serving. Used when Run was never called.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}
