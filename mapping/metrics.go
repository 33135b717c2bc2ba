package mapping

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/mapengine/metric"
)

// storeMetrics holds Prometheus metrics for Mapping Store operations.
type storeMetrics struct {
	lookupMisses  prometheus.Counter
	adoptsTotal   *prometheus.CounterVec // by result: success, error
	currentVersion prometheus.Gauge
}

// StoreMetrics is the exported handle callers (cmd/mapengine's wiring)
// use to construct metrics for NewStore without reaching into this
// package's internals.
type StoreMetrics = storeMetrics

// NewStoreMetrics creates and registers mapping-store metrics with the
// provided registry. A nil registry disables metrics entirely: it
// returns a nil metrics object that every record* method then no-ops
// against.
func NewStoreMetrics(registry *metric.MetricsRegistry) (*StoreMetrics, error) {
	return newStoreMetrics(registry)
}

func newStoreMetrics(registry *metric.MetricsRegistry) (*storeMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &storeMetrics{
		lookupMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mapengine",
			Subsystem: "mapping",
			Name:      "lookup_misses_total",
			Help:      "Total number of mapping lookups with no matching connector or topic entry",
		}),
		adoptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mapengine",
			Subsystem: "mapping",
			Name:      "adopts_total",
			Help:      "Total number of mapping adoption attempts by result",
		}, []string{"result"}),
		currentVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mapengine",
			Subsystem: "mapping",
			Name:      "current_version",
			Help:      "Declared version of the currently adopted mapping",
		}),
	}

	if err := registry.RegisterCounter("mapping", "lookup_misses", m.lookupMisses); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("mapping", "adopts", m.adoptsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("mapping", "current_version", m.currentVersion); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *storeMetrics) recordLookupMiss() {
	if m == nil {
		return
	}
	m.lookupMisses.Inc()
}

func (m *storeMetrics) recordAdopt(result string) {
	if m == nil {
		return
	}
	m.adoptsTotal.WithLabelValues(result).Inc()
}

func (m *storeMetrics) setCurrentVersion(v int) {
	if m == nil {
		return
	}
	m.currentVersion.Set(float64(v))
}
