// Package errors provides standardized error handling patterns for mapengine components.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable), and
// Fatal (unrecoverable, stop processing).
//
// This classification enables intelligent error handling throughout mapengine,
// allowing components to make informed decisions about retries, graceful
// degradation, and failure recovery without hardcoded error string matching.
// It maps directly onto the engine's failure taxonomy: per-record parse
// failures and mapping validation failures are Invalid (the input will never
// get better on retry), remote mapping-source failures are Transient (the
// Reload Controller retries them and falls back to the last-known-good
// mapping), and configuration errors at startup are Fatal.
//
// # Error Classification
//
// Errors are classified based on their type or content:
//
//   - Transient: source unavailability, fetch timeouts, network failures (retry recommended)
//   - Invalid: malformed payloads, unparseable mapping documents, validation failures (do not retry)
//   - Fatal: invalid or missing process configuration (stop processing)
//
// The classification integrates with Go's standard error handling patterns,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if doc == nil {
//	    return errors.ErrInvalidMapping
//	}
//
// Wrap errors with context for debugging:
//
//	if err := store.TryAdopt(data); err != nil {
//	    return errors.Wrap(err, "reload", "poll", "mapping adoption")
//	}
//
// Check classification for retry logic:
//
//	if _, err := source.Fetch(ctx); err != nil {
//	    if errors.IsTransient(err) {
//	        // retry with backoff
//	    } else {
//	        // keep the current mapping, surface the failure
//	    }
//	}
//
// # Error Wrapping Pattern
//
// All wrapping follows the standardized format:
//
//	"component.method: action failed: <underlying error>"
//
// The classified wrappers (WrapTransient, WrapInvalid, WrapFatal) attach both
// the context string and the class, so a classification made at the point of
// failure survives however many layers re-wrap the error above it.
//
// # Architecture Integration
//
// The classification flows through mapengine's components:
//
//   - jsontree and pathlang classify payload and path-expression failures as
//     Invalid, so a malformed record is never retried.
//   - mapping returns validation failures as plain wrapped errors with no
//     class attached; the Mapping Store refuses adoption and the current
//     rules value stays in place.
//   - reload does not consult the classification: it retries every failed
//     metadata probe or fetch with backoff unless the error carries
//     pkg/retry's NonRetryable marker, which ends the retries at once.
//   - metric classifies duplicate metric registration as Invalid and
//     registry-level failures as Fatal.
package errors
