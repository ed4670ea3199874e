// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, cache, metrics) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/migrations"
	"github.com/JaimeStill/vetter/pkg/cache"
	"github.com/JaimeStill/vetter/pkg/database"
	"github.com/JaimeStill/vetter/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// Cache is nil unless clarification sessions are kept in Redis.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Cache     cache.System
	Registry  *prometheus.Registry
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger, database.WithMigrations(migrations.FS))
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	var c cache.System
	if cfg.Clarifications.Backend == config.BackendRedis {
		c, err = cache.New(&cfg.Clarifications.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.Connection(), "outcomes"),
	)

	logger.Info("infrastructure configured",
		"database", cfg.Database.Redacted(),
		"auto_migrate", cfg.Database.AutoMigrate,
		"clarifications", cfg.Clarifications.Backend,
	)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Cache:     c,
		Registry:  reg,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.Cache != nil {
		if err := i.Cache.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("cache start failed: %w", err)
		}
	}
	return nil
}
