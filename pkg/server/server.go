package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/veaiops/veaiops/pkg/middleware"
)

// Runnable represents an auxiliary server managed alongside the HTTP server,
// such as a polling loop or background worker.
type Runnable interface {
	// Name returns the server name for identification.
	Name() string
	// Start starts the server. It must not block.
	Start(ctx context.Context) error
	// Stop stops the server gracefully.
	Stop(ctx context.Context) error
}

// Server is the HTTP server shell with attached background runnables.
type Server struct {
	opts      *Options
	engine    *gin.Engine
	http      *http.Server
	runnables []Runnable
}

// New creates a Server with the standard middleware stack installed.
func New(opts *Options) *Server {
	gin.SetMode(opts.Mode)

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	return &Server{
		opts:   opts,
		engine: engine,
		http: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
	}
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// AddRunnable attaches a background server to the lifecycle.
func (s *Server) AddRunnable(r Runnable) {
	s.runnables = append(s.runnables, r)
}

// Run starts the HTTP server and all runnables, then blocks until a
// termination signal arrives and everything has shut down.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, r := range s.runnables {
		if err := r.Start(ctx); err != nil {
			return fmt.Errorf("failed to start %s: %w", r.Name(), err)
		}
		logger.Infow("background server started", "name", r.Name())
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Infow("HTTP server started", "addr", s.opts.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-quit:
		logger.Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer shutdownCancel()

	var errs []error
	// Background servers stop first so they stop producing work for the
	// HTTP layer's dependencies.
	for _, r := range s.runnables {
		if err := r.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", r.Name(), err))
		}
	}
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop HTTP server: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	logger.Info("server stopped")
	return nil
}
