package reload

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/mapengine/metric"
)

// controllerMetrics holds Prometheus metrics for the Reload Controller,
// following the same nil-registry/nil-safe-record-method pattern as
// mapping.storeMetrics.
type controllerMetrics struct {
	pollsTotal      *prometheus.CounterVec // by outcome: unchanged, adopted, failed
	lastPollUnix    prometheus.Gauge
	forceReloads    *prometheus.CounterVec // by outcome: accepted, limited, error
}

// NewControllerMetrics creates and registers Reload Controller metrics
// with the provided registry. A nil registry disables metrics.
func NewControllerMetrics(registry *metric.MetricsRegistry) (*controllerMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &controllerMetrics{
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mapengine",
			Subsystem: "reload",
			Name:      "polls_total",
			Help:      "Total number of reload polls by outcome",
		}, []string{"outcome"}),
		lastPollUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mapengine",
			Subsystem: "reload",
			Name:      "last_poll_unix_seconds",
			Help:      "Unix timestamp of the most recently completed poll",
		}),
		forceReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mapengine",
			Subsystem: "reload",
			Name:      "force_reloads_total",
			Help:      "Total number of force-reload requests by outcome",
		}, []string{"outcome"}),
	}

	if err := registry.RegisterCounterVec("reload", "polls", m.pollsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("reload", "last_poll_unix", m.lastPollUnix); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("reload", "force_reloads", m.forceReloads); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *controllerMetrics) recordPoll(outcome string) {
	if m == nil {
		return
	}
	m.pollsTotal.WithLabelValues(outcome).Inc()
}

func (m *controllerMetrics) recordPollTime(unixSeconds int64) {
	if m == nil {
		return
	}
	m.lastPollUnix.Set(float64(unixSeconds))
}

func (m *controllerMetrics) recordForceReload(outcome string) {
	if m == nil {
		return
	}
	m.forceReloads.WithLabelValues(outcome).Inc()
}
