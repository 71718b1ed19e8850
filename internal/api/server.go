package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/nasdaq/pkg/config"
	"github.com/wonny/nasdaq/pkg/logger"
)

// ShutdownGrace bounds how long in-flight requests get once Run's context ends.
const ShutdownGrace = 30 * time.Second

// Server serves the REST API over the NASDAQ client
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	env        string
}

// New creates a new API server listening on cfg.Port
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: writeTimeout(cfg.Nasdaq),
			IdleTimeout:  60 * time.Second,
		},
		logger: log.WithComponent("api"),
		env:    cfg.Env,
	}
}

// writeTimeout leaves room for a cold request: a full mint, then the
// upstream call.
func writeTimeout(cfg config.NasdaqConfig) time.Duration {
	return cfg.MintTimeout + cfg.HTTPTimeout + 15*time.Second
}

// Run serves until ctx ends, then shuts down gracefully. A failed listen
// is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	s.logger.WithFields(map[string]interface{}{
		"addr": s.httpServer.Addr,
		"env":  s.env,
	}).Info("Starting API server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	sctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(sctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info("API server stopped")
	return nil
}
