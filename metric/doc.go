// Package metric provides Prometheus-based metrics collection and an HTTP
// server for mapengine observability.
//
// The package offers a centralized metrics registry managing both core
// platform metrics (service status, record throughput, processing latency)
// and component-specific metrics, plus an HTTP server exposing everything
// in Prometheus format.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: platform-level metrics registered automatically (Metrics type)
//  2. Component Registry: extensible registration for component-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with health checks (Server type)
//
// Core metrics cover what every mapengine process has in common (records
// in, records out, errors); component metrics cover what only one
// component knows (mapping-store adoptions, reload poll outcomes,
// orchestrator record outcomes). Both land on the same /metrics endpoint.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry, security.Config{})
//
//	go func() {
//	    if err := server.Start(); err != nil && err != http.ErrServerClosed {
//	        log.Printf("metrics server error: %v", err)
//	    }
//	}()
//
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordServiceStatus("mapengine", 2) // 2 = running
//	coreMetrics.RecordReceived("patient-topic")
//	coreMetrics.RecordProcessed("patient-topic", "projected")
//
// # Component-Specific Metrics
//
// Components register their own collectors through the registrar, keyed
// "component.metric" so duplicate registration is caught early:
//
//	adopts := prometheus.NewCounterVec(prometheus.CounterOpts{
//	    Namespace: "mapengine",
//	    Subsystem: "mapping",
//	    Name:      "adopts_total",
//	    Help:      "Mapping adoptions by outcome",
//	}, []string{"outcome"})
//	if err := registry.RegisterCounterVec("mapping", "adopts", adopts); err != nil {
//	    return err
//	}
//
// # Architecture Integration
//
// In a running mapengine process, the registry is created once in
// cmd/mapengine and threaded into mapping.NewStoreMetrics,
// reload.NewControllerMetrics, and orchestrator.NewMetrics; each
// constructor accepts a nil registry, which disables that component's
// metrics without changing any call site. The Server additionally hosts
// the /healthz route the health package's Monitor feeds.
//
// # TLS
//
// The Server optionally serves over TLS when the provided
// security.Config enables it, loading certificates through pkg/tlsutil.
package metric
