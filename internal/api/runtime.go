package api

import (
	"fmt"

	"github.com/JaimeStill/vetter/internal/catalog"
	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/internal/infrastructure"
	"github.com/JaimeStill/vetter/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Catalog    *catalog.Catalog
}

// NewRuntime creates an API runtime with a module-scoped logger and the
// rule catalog named by the configuration.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	c := catalog.Default()
	if cfg.Catalog.Path != "" {
		loaded, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("catalog load failed: %w", err)
		}
		c = loaded
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Cache:     infra.Cache,
			Registry:  infra.Registry,
		},
		Pagination: cfg.API.Pagination,
		Catalog:    c,
	}, nil
}
