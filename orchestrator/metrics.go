package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/mapengine/metric"
)

// orchestratorMetrics holds Prometheus metrics for per-record
// processing outcomes, following the same nil-registry/nil-safe-record
// pattern used throughout this module.
type orchestratorMetrics struct {
	outcomesTotal *prometheus.CounterVec // by outcome: projected, parse_error, mapping_miss
}

// NewMetrics creates and registers orchestrator metrics with the
// provided registry. A nil registry disables metrics.
func NewMetrics(registry *metric.MetricsRegistry) (*orchestratorMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &orchestratorMetrics{
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mapengine",
			Subsystem: "orchestrator",
			Name:      "record_outcomes_total",
			Help:      "Total number of records processed by outcome",
		}, []string{"outcome"}),
	}

	if err := registry.RegisterCounterVec("orchestrator", "record_outcomes", m.outcomesTotal); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *orchestratorMetrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(outcome).Inc()
}
