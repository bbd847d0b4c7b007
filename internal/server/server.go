// Package server exposes the persona pipelines over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/josephgoksu/muse/internal/agent"
	"github.com/josephgoksu/muse/internal/telemetry"
)

// Config holds the HTTP server settings.
type Config struct {
	Port    int
	Origins []string
	Version string
}

type Server struct {
	agents    *agent.Set
	secrets   SecretSource
	telemetry telemetry.Client
	logger    *slog.Logger
	origins   map[string]struct{}
	version   string
	port      int
	server    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithTelemetry sets the usage telemetry client.
func WithTelemetry(c telemetry.Client) Option {
	return func(s *Server) { s.telemetry = c }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server routing each persona in agents to its pipeline.
// Credentials come from secrets, never from the client request.
func New(cfg Config, agents *agent.Set, secrets SecretSource, opts ...Option) *Server {
	s := &Server{
		agents:    agents,
		secrets:   secrets,
		telemetry: telemetry.NewNoopClient(),
		logger:    slog.Default(),
		origins:   make(map[string]struct{}, len(cfg.Origins)),
		version:   cfg.Version,
		port:      cfg.Port,
	}
	for _, o := range cfg.Origins {
		s.origins[o] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.registerRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		s.logger.Info("server listening", "addr", s.server.Addr, "personas", s.agents.IDs())
		s.telemetry.Track(telemetry.EventServerStart, telemetry.Properties{"personas": len(s.agents.IDs())})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	if cerr := s.telemetry.Close(); cerr != nil {
		s.logger.Warn("telemetry flush failed", "error", cerr)
	}
	return err
}
