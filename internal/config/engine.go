package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/vetter/pkg/cache"
)

// ClassifierConfig bounds calls to the language model and batch fan-out.
type ClassifierConfig struct {
	Timeout      string `toml:"timeout"`
	MaxBatch     int    `toml:"max_batch"`
	BatchWorkers int    `toml:"batch_workers"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *ClassifierConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *ClassifierConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.MaxBatch == 0 {
		c.MaxBatch = 20
	}
	if c.BatchWorkers == 0 {
		c.BatchWorkers = 4
	}

	if v := os.Getenv("VETTER_CLASSIFIER_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("VETTER_CLASSIFIER_MAX_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBatch = n
		}
	}
	if v := os.Getenv("VETTER_CLASSIFIER_BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchWorkers = n
		}
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxBatch < 1 {
		return fmt.Errorf("max_batch must be at least 1")
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch_workers must be at least 1")
	}
	return nil
}

func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxBatch != 0 {
		c.MaxBatch = overlay.MaxBatch
	}
	if overlay.BatchWorkers != 0 {
		c.BatchWorkers = overlay.BatchWorkers
	}
}

// CatalogConfig points at an alternate rule catalog. An empty path uses the
// embedded catalog.
type CatalogConfig struct {
	Path string `toml:"path"`
}

func (c *CatalogConfig) Finalize() error {
	if v := os.Getenv("VETTER_CATALOG_PATH"); v != "" {
		c.Path = v
	}
	if c.Path != "" {
		if _, err := os.Stat(c.Path); err != nil {
			return fmt.Errorf("catalog path: %w", err)
		}
	}
	return nil
}

func (c *CatalogConfig) Merge(overlay *CatalogConfig) {
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ClarificationsConfig selects the ledger that holds open clarification
// sessions. The redis backend reads the nested cache settings.
type ClarificationsConfig struct {
	Backend string       `toml:"backend"`
	TTL     string       `toml:"ttl"`
	Redis   cache.Config `toml:"redis"`
}

// TTLDuration returns TTL as a time.Duration.
func (c *ClarificationsConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

func (c *ClarificationsConfig) Finalize() error {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.TTL == "" {
		c.TTL = "24h"
	}
	if v := os.Getenv("VETTER_CLARIFICATIONS_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("VETTER_CLARIFICATIONS_TTL"); v != "" {
		c.TTL = v
	}

	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if err := c.Redis.Finalize(cacheEnv); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}

func (c *ClarificationsConfig) Merge(overlay *ClarificationsConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	c.Redis.Merge(&overlay.Redis)
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled *bool  `toml:"enabled"`
	Path    string `toml:"path"`
}

// IsEnabled reports whether the scrape endpoint is served. Defaults to true.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c *MetricsConfig) Finalize() error {
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if v := os.Getenv("VETTER_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid VETTER_METRICS_ENABLED: %w", err)
		}
		c.Enabled = &b
	}
	if v := os.Getenv("VETTER_METRICS_PATH"); v != "" {
		c.Path = v
	}
	if c.Path[0] != '/' {
		return fmt.Errorf("path must start with /")
	}
	return nil
}

func (c *MetricsConfig) Merge(overlay *MetricsConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}
