package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/internal/infrastructure"
)

// Server wires infrastructure, the API module, and the HTTP listener for
// one process.
type Server struct {
	cfg   *config.Config
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra, cfg)
	modules.Mount(router)

	return &Server{
		cfg:   cfg,
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

func (s *Server) logger() *slog.Logger { return s.infra.Logger }

// Start brings up infrastructure, then the listener. It returns once the
// port is bound; subsystem readiness is reported asynchronously.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	s.logger().Info(
		"vetter started",
		"version", s.cfg.Version,
		"addr", s.http.Addr(),
		"env", s.cfg.Env(),
		"metrics", s.cfg.Metrics.IsEnabled(),
	)

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		if ready, pending := s.infra.Lifecycle.Status(); !ready {
			s.logger().Warn("startup finished with subsystems not ready", "pending", pending)
			return
		}
		s.logger().Info("all subsystems ready")
	}()

	return nil
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	return s.Shutdown(s.cfg.ShutdownTimeoutDuration())
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.logger().Info("shutting down", "timeout", timeout)
	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		s.logger().Error("shutdown incomplete", "error", err)
		return err
	}
	s.logger().Info("vetter stopped")
	return nil
}
