// Package database manages the PostgreSQL pool behind the outcome store and
// its readiness within the lifecycle coordinator.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/vetter/pkg/lifecycle"
)

// System is the PostgreSQL pool plus its lifecycle hooks.
type System interface {
	lifecycle.ReadinessChecker

	Connection() *sql.DB
	Start(lc *lifecycle.Coordinator) error
}

// Option configures a System.
type Option func(*database)

// WithMigrations applies the migrations in fsys after the first successful
// ping when Config.AutoMigrate is set.
func WithMigrations(fsys fs.FS) Option {
	return func(d *database) { d.migrations = fsys }
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	autoMigrate bool
	migrations  fs.FS
	ready       atomic.Bool
}

// New opens the pool without connecting. Start establishes the connection.
func New(cfg *Config, logger *slog.Logger, opts ...Option) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	d := &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
		autoMigrate: cfg.AutoMigrate,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *database) Connection() *sql.DB { return d.conn }

func (d *database) Ready() bool { return d.ready.Load() }

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")
	lc.Check("database", d)

	lc.OnStartup(func() {
		if err := d.connect(lc.Context()); err != nil {
			d.logger.Error("database unavailable", "error", err)
			return
		}

		if d.autoMigrate && d.migrations != nil {
			if err := d.migrate(); err != nil {
				d.logger.Error("database migration failed", "error", err)
				return
			}
		}

		d.ready.Store(true)
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}

// connect pings until success or until connTimeout elapses, doubling the
// wait between attempts up to one second.
func (d *database) connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.connTimeout)
	defer cancel()

	wait := 100 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err := d.conn.PingContext(ctx)
		if err == nil {
			return nil
		}
		d.logger.Debug("database ping failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("ping after %d attempt(s): %w", attempt, err)
		case <-time.After(wait):
		}
		wait = min(wait*2, time.Second)
	}
}

func (d *database) migrate() error {
	source, err := iofs.New(d.migrations, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	driver, err := postgres.WithInstance(d.conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	// m is left open: closing it closes the shared pool.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	v, dirty, _ := m.Version()
	d.logger.Info("database schema current", "version", v, "dirty", dirty)
	return nil
}
