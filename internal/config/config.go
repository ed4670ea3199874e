// Package config loads the Vetter service configuration from config.toml, an
// optional config.<VETTER_ENV>.toml overlay, and VETTER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/vetter/pkg/cache"
	"github.com/JaimeStill/vetter/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvVetterEnv             = "VETTER_ENV"
	EnvVetterShutdownTimeout = "VETTER_SHUTDOWN_TIMEOUT"
	EnvVetterVersion         = "VETTER_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "VETTER_DB_URL",
	Host:            "VETTER_DB_HOST",
	Port:            "VETTER_DB_PORT",
	Name:            "VETTER_DB_NAME",
	User:            "VETTER_DB_USER",
	Password:        "VETTER_DB_PASSWORD",
	SSLMode:         "VETTER_DB_SSL_MODE",
	MaxOpenConns:    "VETTER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "VETTER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "VETTER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "VETTER_DB_CONN_TIMEOUT",
	AutoMigrate:     "VETTER_DB_AUTO_MIGRATE",
}

var cacheEnv = &cache.Env{
	URL:          "VETTER_REDIS_URL",
	PoolSize:     "VETTER_REDIS_POOL_SIZE",
	MinIdleConns: "VETTER_REDIS_MIN_IDLE_CONNS",
	DialTimeout:  "VETTER_REDIS_DIAL_TIMEOUT",
	ReadTimeout:  "VETTER_REDIS_READ_TIMEOUT",
	WriteTimeout: "VETTER_REDIS_WRITE_TIMEOUT",
}

// Config is the root configuration for the Vetter service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	API             APIConfig            `toml:"api"`
	Agent           AgentConfig          `toml:"agent"`
	Classifier      ClassifierConfig     `toml:"classifier"`
	Catalog         CatalogConfig        `toml:"catalog"`
	Clarifications  ClarificationsConfig `toml:"clarifications"`
	Metrics         MetricsConfig        `toml:"metrics"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the VETTER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvVetterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile is Load with an explicit base file. The overlay is resolved next
// to it.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Classifier.Merge(&overlay.Classifier)
	c.Catalog.Merge(&overlay.Catalog)
	c.Clarifications.Merge(&overlay.Clarifications)
	c.Metrics.Merge(&overlay.Metrics)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Agent.Finalize(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Classifier.Finalize(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Catalog.Finalize(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Clarifications.Finalize(); err != nil {
		return fmt.Errorf("clarifications: %w", err)
	}
	if err := c.Metrics.Finalize(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvVetterShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvVetterVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvVetterEnv)
	if env == "" {
		return ""
	}
	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
