package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the platform-level metrics every mapengine process
// exposes regardless of which components are active. Component-specific
// metrics (mapping-store adoptions, reload polls, orchestrator outcomes)
// are registered separately by their owners through the registry.
type Metrics struct {
	ServiceStatus      *prometheus.GaugeVec
	RecordsReceived    *prometheus.CounterVec
	RecordsProcessed   *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	ErrorsTotal        *prometheus.CounterVec
	HealthCheckStatus  *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mapengine",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		RecordsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mapengine",
				Subsystem: "records",
				Name:      "received_total",
				Help:      "Total number of records received for transformation",
			},
			[]string{"topic"},
		),

		RecordsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mapengine",
				Subsystem: "records",
				Name:      "processed_total",
				Help:      "Total number of records processed by outcome",
			},
			[]string{"topic", "outcome"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mapengine",
				Subsystem: "records",
				Name:      "processing_duration_seconds",
				Help:      "Per-record transformation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"topic"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mapengine",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "type"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mapengine",
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"component"},
		),
	}
}

// RecordServiceStatus updates service status metric
func (c *Metrics) RecordServiceStatus(service string, status int) {
	c.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordReceived increments the received-record counter
func (c *Metrics) RecordReceived(topic string) {
	c.RecordsReceived.WithLabelValues(topic).Inc()
}

// RecordProcessed increments the processed-record counter
func (c *Metrics) RecordProcessed(topic, outcome string) {
	c.RecordsProcessed.WithLabelValues(topic, outcome).Inc()
}

// RecordProcessingDuration records per-record transformation time
func (c *Metrics) RecordProcessingDuration(topic string, duration time.Duration) {
	c.ProcessingDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// RecordError increments the error counter
func (c *Metrics) RecordError(component, errorType string) {
	c.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(component).Set(value)
}
