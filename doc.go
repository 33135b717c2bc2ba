// Package mapengine implements a per-message stream transformation
// engine: it reshapes an inbound JSON record into the shape a
// downstream sink expects, driven by a declarative output template
// looked up by connector name (falling back to topic name).
//
// # Architecture
//
// A record flows through five collaborating packages, leaves-first:
//
//	┌─────────────┐     ┌──────────────────┐     ┌───────────────────┐
//	│  pathlang   │◄────│     template      │◄────│      mapping      │
//	│ path engine │     │ output-template   │     │  rules, validator,│
//	│             │     │ interpreter        │     │  atomic Store     │
//	└─────────────┘     └────────┬───────────┘     └─────────┬─────────┘
//	                             │                            │
//	                       ┌─────┴─────┐                ┌─────┴──────┐
//	                       │ transform  │                │   reload   │
//	                       │ pipeline   │                │ controller │
//	                       └────────────┘                └─────┬──────┘
//	                                                             │
//	                                                       ┌─────┴──────┐
//	                                                       │ remotestore│
//	                                                       └────────────┘
//
// orchestrator sits above all of them: it parses the raw payload, asks
// mapping.Store for the TopicMapping matching the record's connector or
// topic, drives template.Project over the compiled output template, and
// frames the result (wrapped under the mapping's root key, or flat) for
// a sink adapter the orchestrator never constructs itself.
//
// # Packages
//
//   - jsontree: the JSON tree sum type and the "missing" sentinel that
//     every navigation rule in pathlang hinges on.
//   - pathlang: the path grammar (field/index/wildcard/filter segments,
//     implicit array projection) plus a process-wide compiled-path cache.
//   - template: compiles an output template document into a tagged
//     variant (object/array/field-spec) and interprets it against a
//     parsed record.
//   - transform: the four per-field value transforms (toString,
//     dateFormat, encrypt, mask) applied in declared order.
//   - mapping: the mapping rules document, its validator, and the
//     atomically-swapped Store that serves lookups while reload
//     happens in the background.
//   - remotestore: the pluggable backend the Reload Controller polls
//     (a packaged classpath-equivalent source, or an S3/MinIO source).
//   - reload: the single background timer that detects remote changes
//     (entity-tag probe with content-hash fallback) and adopts them.
//   - orchestrator: the thin per-record glue described above.
//
// Supporting packages (errors, health, metric, pkg/cache, pkg/retry,
// pkg/security, pkg/tlsutil) provide the ambient logging, error
// classification, health reporting, metrics, caching, and retry/TLS
// concerns every long-lived component in this module shares.
//
// # Concurrency model
//
// The per-record path (orchestrator.Process, and everything it calls)
// performs no I/O and holds no shared mutable state beyond the
// process-wide caches in pathlang and transform, which are
// concurrent-safe get-or-compute maps keyed by stable text. Many
// worker goroutines call Process concurrently; the Reload Controller
// runs on its own background goroutine and communicates with the
// per-record path only through mapping.Store's atomic pointer swap.
//
// # Binary
//
// cmd/mapengine wires these packages into a standalone process that
// reads NDJSON records from stdin, projects each through the
// Orchestrator, and writes NDJSON to stdout, optionally polling a
// remote mapping document for hot-reload and serving Prometheus
// metrics and a health endpoint.
package mapengine
