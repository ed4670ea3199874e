// Package cache provides Redis connection management with lifecycle coordination.
package cache

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/vetter/pkg/lifecycle"
)

// System manages a Redis client and lifecycle coordination.
type System interface {
	lifecycle.ReadinessChecker

	// Client returns the underlying go-redis client.
	Client() *redis.Client
	// Start registers startup, readiness, and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type cache struct {
	client *redis.Client
	logger *slog.Logger
	ready  atomic.Bool
}

// New creates a cache system from cfg. The connection is verified on startup.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeoutDuration()
	opts.ReadTimeout = cfg.ReadTimeoutDuration()
	opts.WriteTimeout = cfg.WriteTimeoutDuration()

	return &cache{
		client: redis.NewClient(opts),
		logger: logger.With("system", "cache"),
	}, nil
}

func (c *cache) Client() *redis.Client {
	return c.client
}

func (c *cache) Ready() bool {
	return c.ready.Load()
}

func (c *cache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting redis client")
	lc.Check("cache", c)

	lc.OnStartup(func() {
		if err := c.client.Ping(lc.Context()).Err(); err != nil {
			c.logger.Error("redis ping failed", "error", err)
			return
		}
		c.ready.Store(true)
		c.logger.Info("redis connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.ready.Store(false)

		if err := c.client.Close(); err != nil {
			c.logger.Error("redis close failed", "error", err)
			return
		}
		c.logger.Info("redis connection closed")
	})

	return nil
}
