// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/internal/infrastructure"
	"github.com/JaimeStill/vetter/pkg/formatting"
	"github.com/JaimeStill/vetter/pkg/middleware"
	"github.com/JaimeStill/vetter/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}
	domain := NewDomain(cfg, runtime)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, err
	}

	runtime.Logger.Info(
		"catalog loaded",
		"version", runtime.Catalog.Version,
		"hash", runtime.Catalog.Hash(),
		"max_request_size", formatting.FormatBytes(cfg.API.MaxRequestSizeBytes()),
	)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.RequestID())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.Recover(runtime.Infrastructure.Logger))

	return m, nil
}
