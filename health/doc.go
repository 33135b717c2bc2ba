// Package health provides health monitoring for mapengine components
// with thread-safe status tracking and aggregation.
//
// # Health States
//
// The package supports three health states:
//   - Healthy: component operating normally
//   - Degraded: component operating with reduced functionality (e.g. hot
//     reload disabled, serving the last loaded mapping indefinitely)
//   - Unhealthy: component not functioning (e.g. initial mapping load failed)
//
// # Core Components
//
// Status: one component's health state — status level, descriptive
// message, timestamp, optional metrics, and hierarchical sub-statuses.
//
// Monitor: thread-safe tracking of multiple component statuses with
// concurrent read/write access and automatic timestamp management.
//
// # Basic Usage
//
//	monitor := health.NewMonitor()
//
//	monitor.UpdateHealthy("mapping_store", "initial mapping adopted")
//	monitor.UpdateDegraded("reload_controller", "hot-reload disabled")
//
//	if status, exists := monitor.Get("mapping_store"); exists && status.IsHealthy() {
//	    // ...
//	}
//
// System-wide aggregation follows worst-case rules: any unhealthy
// component marks the aggregate unhealthy; any degraded component (with
// none unhealthy) marks it degraded:
//
//	agg := health.Aggregate("mapengine", statuses)
//	if agg.IsUnhealthy() {
//	    // serve 503 from /healthz
//	}
//
// # Error Sanitization
//
// Error messages passed through FromError are sanitized before they can
// reach a log line or the health endpoint. Mapping-source failures
// routinely embed endpoint URLs, bucket/object paths, and
// credential-bearing query strings:
//
//	status := health.FromError("reload_controller", err)
//	// "fetch s3://bucket/key failed: password=x" → "fetch [URL] failed: [REDACTED]"
//
// Sanitization patterns:
//   - URLs: http://, https://, s3:// → [URL]
//   - File paths: /path/to/file, C:\path\to\file → [PATH]
//   - IP addresses: 192.168.1.100 → [IP]
//   - Ports: :8080 → [PORT]
//   - Credentials: password=X, token=X, key=X, secret=X → [REDACTED]
//
// Sanitization has no opt-out; over-redacting an occasional debug
// message costs less than leaking a credential to a dashboard.
//
// # Architecture Integration
//
// cmd/mapengine owns the Monitor: the Mapping Store's initial load and
// the Reload Controller's poll/force-reload outcomes feed it via
// UpdateHealthy/UpdateDegraded/FromError, and the metric.Server's
// /healthz route serves Aggregate over Monitor.GetAll, returning 503
// when the aggregate is unhealthy.
//
// Status is a value type; WithMetrics and WithSubStatus return copies,
// so a Status handed to the HTTP layer cannot be mutated underneath it.
package health
