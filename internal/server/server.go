package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marcogenualdo/godnsweb/internal/api"
	"github.com/marcogenualdo/godnsweb/internal/cache"
	"github.com/marcogenualdo/godnsweb/internal/config"
	"github.com/marcogenualdo/godnsweb/internal/handlers"
	"github.com/marcogenualdo/godnsweb/internal/metrics"
	"github.com/marcogenualdo/godnsweb/internal/session"
)

// Identity is what the server needs from the OIDC manager.
type Identity interface {
	session.SessionManager
	handlers.UserInfoFetcher
}

type Server struct {
	cfg        config.Config
	cache      cache.Cache
	manager    Identity
	api        *api.Client
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	logger     *slog.Logger
	httpServer *http.Server
}

func New(cfg config.Config, cache cache.Cache, manager Identity, client *api.Client, registry *prometheus.Registry, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	if manager == nil || client == nil {
		return nil, errors.New("server requires an OIDC manager and an API client")
	}
	return &Server{
		cfg:      cfg,
		cache:    cache,
		manager:  manager,
		api:      client,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}, nil
}

// Handler builds the routed handler without starting a listener.
func (s *Server) Handler() (http.Handler, error) {
	return s.setupRoutes()
}

func (s *Server) Start() error {
	router, err := s.setupRoutes()
	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.API.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"host", s.cfg.Server.Host,
			"port", s.cfg.Server.Port,
			"base_url", s.cfg.Server.BaseURL,
			"api_url", s.cfg.API.URL,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig)
		return s.Shutdown()
	}
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		return err
	}

	if err := s.cache.Close(); err != nil {
		s.logger.Error("error closing cache", "error", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}
