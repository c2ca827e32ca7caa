package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "advisorflow"

// Transition labels
const (
	TransitionStarted     = "started"
	TransitionReplaced    = "replaced"
	TransitionAdvanced    = "advanced"
	TransitionSkipped     = "skipped"
	TransitionSkipIgnored = "skip_ignored"
	TransitionCompleted   = "completed"
	TransitionCancelled   = "cancelled"
)

// Metrics holds the engine's Prometheus collectors
type Metrics struct {
	// turnsTotal counts processed turns by detected command.
	turnsTotal *prometheus.CounterVec

	// transitionsTotal counts workflow state transitions.
	transitionsTotal *prometheus.CounterVec

	modelErrors       prometheus.Counter
	persistenceErrors prometheus.Counter

	// turnDuration is a histogram of whole-turn latency including the model call.
	turnDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Total number of chat turns processed",
			},
			[]string{"command"},
		),
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_transitions_total",
				Help:      "Total number of workflow state transitions",
			},
			[]string{"transition"},
		),
		modelErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_errors_total",
				Help:      "Total number of failed model calls",
			},
		),
		persistenceErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_errors_total",
				Help:      "Total number of conversation store failures",
			},
		),
		turnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Duration of chat turns in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.turnsTotal, m.transitionsTotal, m.modelErrors, m.persistenceErrors, m.turnDuration)
	}
	return m
}

func (m *Metrics) recordTurn(command string, seconds float64) {
	m.turnsTotal.WithLabelValues(command).Inc()
	m.turnDuration.Observe(seconds)
}

func (m *Metrics) recordTransition(transition string) {
	m.transitionsTotal.WithLabelValues(transition).Inc()
}
