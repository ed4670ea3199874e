package eligibility

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for eligibility decisions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Decisions           *prometheus.CounterVec
	ClassifierDuration  *prometheus.HistogramVec
	Failures            *prometheus.CounterVec
	PersistenceFailures prometheus.Counter
	Screened            *prometheus.CounterVec
}

// NewMetrics registers the eligibility metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vetter_decisions_total",
			Help: "Eligibility decisions by stage, category, and decision",
		}, []string{"stage", "category", "decision"}),
		ClassifierDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vetter_classifier_duration_seconds",
			Help:    "Duration of external classifier calls",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		}, []string{"stage"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vetter_failures_total",
			Help: "Failed classification attempts by cause",
		}, []string{"cause"}),
		PersistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "vetter_persistence_failures_total",
			Help: "Accepted decisions that could not be recorded",
		}),
		Screened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vetter_screened_total",
			Help: "Submissions rejected by the local pre-screen without a classifier call",
		}, []string{"category"}),
	}
}

func (m *Metrics) observeDecision(stage Stage, category string, d Decision) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(string(stage), category, string(d.Kind())).Inc()
	if f, ok := d.(Failed); ok {
		m.Failures.WithLabelValues(Cause(f.Cause).Error()).Inc()
	}
}

func (m *Metrics) observeClassifier(stage Stage, start time.Time) {
	if m == nil {
		return
	}
	m.ClassifierDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) incPersistenceFailure() {
	if m == nil {
		return
	}
	m.PersistenceFailures.Inc()
}

func (m *Metrics) incScreened(category string) {
	if m == nil {
		return
	}
	m.Screened.WithLabelValues(category).Inc()
}
