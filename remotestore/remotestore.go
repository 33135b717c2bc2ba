// Package remotestore provides the remote object fetch contract the
// Reload Controller polls against: a metadata probe that yields an
// entity tag, and a body fetch. Two implementations are provided: a
// packaged-file (classpath-equivalent) source for the default
// configuration, and an S3/MinIO-compatible source for remote hosting.
package remotestore

import "context"

// Metadata is the result of a metadata probe: the remote object's
// entity tag (opaque versioning marker), if the backend exposes one.
type Metadata struct {
	// ETag is the remote object's entity tag. Empty means the backend
	// does not expose one, forcing the Reload Controller onto the
	// content-hash fallback path.
	ETag string
}

// Source is the pluggable backend the Reload Controller fetches mapping
// documents through. Implementations must be safe for concurrent use,
// though in practice only the Reload Controller's single background
// flow calls them.
type Source interface {
	// Stat performs the metadata probe (phase one of change detection).
	// Returns an error if the object does not exist or the probe fails.
	Stat(ctx context.Context) (Metadata, error)

	// Fetch retrieves the object body (used both for the content-hash
	// fallback and for the adoption fetch itself).
	Fetch(ctx context.Context) ([]byte, error)

	// Close releases any long-lived client resources. Safe to call
	// multiple times.
	Close() error
}
