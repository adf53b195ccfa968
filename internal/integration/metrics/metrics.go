// Package metrics exposes processor and installment counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/finance-tracker/ledger/internal/application/adapter"
)

const namespace = "ledger"

// prometheusMetrics implements adapter.Metrics with Prometheus collectors.
type prometheusMetrics struct {
	runDuration        prometheus.Histogram
	runDefinitions     prometheus.Counter
	generated          prometheus.Counter
	definitionFailures *prometheus.CounterVec
	groupMutations     *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them on registerer.
func NewPrometheusMetrics(registerer prometheus.Registerer) (adapter.Metrics, error) {
	m := &prometheusMetrics{
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "run_duration_seconds",
			Help:      "Duration of due-transaction processing runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		runDefinitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "definitions_total",
			Help:      "Definitions examined by processing runs.",
		}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "transactions_generated_total",
			Help:      "Transactions materialised from recurrence definitions.",
		}),
		definitionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "definition_failures_total",
			Help:      "Definitions that failed during a run, by error kind.",
		}, []string{"kind"}),
		groupMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "installments",
			Name:      "group_mutations_total",
			Help:      "Committed installment group mutations.",
		}, []string{"operation", "scope"}),
	}

	collectors := []prometheus.Collector{
		m.runDuration,
		m.runDefinitions,
		m.generated,
		m.definitionFailures,
		m.groupMutations,
	}
	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) ObserveRun(duration time.Duration, definitions int) {
	m.runDuration.Observe(duration.Seconds())
	m.runDefinitions.Add(float64(definitions))
}

func (m *prometheusMetrics) AddGenerated(n int) {
	if n > 0 {
		m.generated.Add(float64(n))
	}
}

func (m *prometheusMetrics) IncDefinitionFailure(kind string) {
	m.definitionFailures.WithLabelValues(kind).Inc()
}

func (m *prometheusMetrics) IncGroupMutation(operation, scope string) {
	m.groupMutations.WithLabelValues(operation, scope).Inc()
}

type nopMetrics struct{}

// NewNopMetrics returns metrics that record nothing.
func NewNopMetrics() adapter.Metrics {
	return nopMetrics{}
}

func (nopMetrics) ObserveRun(time.Duration, int)   {}
func (nopMetrics) AddGenerated(int)                {}
func (nopMetrics) IncDefinitionFailure(string)     {}
func (nopMetrics) IncGroupMutation(string, string) {}
