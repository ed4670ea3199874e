package api

import (
	"github.com/JaimeStill/vetter/internal/clarifications"
	"github.com/JaimeStill/vetter/internal/config"
	"github.com/JaimeStill/vetter/internal/eligibility"
	"github.com/JaimeStill/vetter/internal/outcomes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Eligibility eligibility.System
	Outcomes    outcomes.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	outcomesSystem := outcomes.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	agentCfg := cfg.Agent.Resolved()
	classifier := eligibility.NewAgentClassifier(agentCfg, cfg.Classifier.TimeoutDuration())

	engine := eligibility.NewEngine(
		runtime.Catalog,
		classifier,
		outcomesSystem,
		runtime.Logger,
		eligibility.WithMetrics(eligibility.NewMetrics(runtime.Registry)),
		eligibility.WithProvenance(classifier.Provider(), classifier.Model()),
	)

	eligibilitySystem := eligibility.New(
		engine,
		newLedger(cfg, runtime),
		runtime.Logger,
		eligibility.Config{
			MaxBatch:     cfg.Classifier.MaxBatch,
			BatchWorkers: cfg.Classifier.BatchWorkers,
			MaxBodyBytes: cfg.API.MaxRequestSizeBytes(),
		},
	)

	return &Domain{
		Eligibility: eligibilitySystem,
		Outcomes:    outcomesSystem,
	}
}

func newLedger(cfg *config.Config, runtime *Runtime) clarifications.Ledger {
	ttl := cfg.Clarifications.TTLDuration()
	if runtime.Cache != nil {
		return clarifications.NewRedis(runtime.Cache.Client(), ttl)
	}
	return clarifications.NewMemory(ttl)
}
