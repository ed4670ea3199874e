package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/vetter/internal/catalog"
	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/internal/eligibility"
	"github.com/JaimeStill/vetter/internal/outcomes"
)

type options struct {
	dbPath      string
	configPath  string
	catalogPath string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	home, _ := os.UserHomeDir()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "vetter",
		Short:         "Product eligibility decisions against the rule catalog",
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", filepath.Join(home, ".vetter", "outcomes.db"), "outcome database path")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.BaseConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "rule catalog path (default embedded)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	rootCmd.AddCommand(classifyCmd(opts))
	rootCmd.AddCommand(respondCmd(opts))
	rootCmd.AddCommand(catalogCmd(opts))
	rootCmd.AddCommand(outcomesCmd(opts))

	return rootCmd
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *options) catalog(cfg *config.Config) (*catalog.Catalog, error) {
	path := o.catalogPath
	if path == "" && cfg != nil {
		path = cfg.Catalog.Path
	}
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// store opens the local SQLite outcome store, creating its directory.
func (o *options) store(cfg *config.Config, logger *slog.Logger) (outcomes.System, func() error, error) {
	if o.dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(o.dbPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := outcomes.OpenSQLite(o.dbPath)
	if err != nil {
		return nil, nil, err
	}

	return outcomes.NewSQLite(db, logger, cfg.API.Pagination), db.Close, nil
}

// system assembles a stateless eligibility system backed by the configured
// agent and the local outcome store.
func (o *options) system() (eligibility.System, func() error, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	c, err := o.catalog(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := o.logger()
	store, closeStore, err := o.store(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	classifier := eligibility.NewAgentClassifier(cfg.Agent.Resolved(), cfg.Classifier.TimeoutDuration())
	engine := eligibility.NewEngine(
		c,
		classifier,
		store,
		logger,
		eligibility.WithProvenance(classifier.Provider(), classifier.Model()),
	)

	sys := eligibility.New(engine, nil, logger, eligibility.Config{
		MaxBatch:     cfg.Classifier.MaxBatch,
		BatchWorkers: cfg.Classifier.BatchWorkers,
	})
	return sys, closeStore, nil
}
