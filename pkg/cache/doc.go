// Package cache provides thread-safe, generic caching with built-in
// statistics tracking and optional Prometheus metrics integration.
//
// # Overview
//
// Two implementations with different eviction strategies:
//   - Simple: no eviction (manual cleanup only)
//   - LRU: least-recently-used eviction bounded by a maximum size
//
// Both are generic over the value type, safe for concurrent use, and
// track hit/miss/set/delete/eviction statistics unconditionally.
//
// # Quick Start
//
// Simple cache creation:
//
//	c, err := cache.NewSimple[*CompiledThing]()
//	if err != nil {
//	    return err
//	}
//	c.Set("key", compiled)
//	value, ok := c.Get("key")
//
// LRU cache with a capacity limit:
//
//	c, err := cache.NewLRU[*regexp.Regexp](100)
//
// Optional Prometheus export and eviction callback:
//
//	c, err := cache.NewLRU[*regexp.Regexp](100,
//	    cache.WithMetrics[*regexp.Regexp](registry, "mask_regex"),
//	    cache.WithEvictionCallback[*regexp.Regexp](func(key string, _ *regexp.Regexp) {
//	        log.Printf("evicted pattern: %s", key)
//	    }),
//	)
//
// # Choosing a Strategy
//
// Simple suits key spaces bounded by construction: compiled path
// expressions and translated date layouts have at most one entry per
// distinct text in the adopted mapping document, so they can only grow
// to the size of the template corpus. LRU suits key spaces that are
// unbounded or fed by remote input, like custom-mask regex patterns
// arriving in mapping documents.
//
// # Statistics and Metrics
//
// Every cache tracks statistics; read them with Stats():
//
//	stats := c.Stats()
//	log.Printf("hit ratio: %.2f", stats.HitRatio())
//
// Prometheus export is opt-in via WithMetrics, registering
// hits/misses/sets/deletes/evictions counters and a size gauge under the
// given component prefix.
//
// # Architecture Integration
//
// mapengine keeps four process-wide caches on this package: the
// compiled-path cache (pathlang, Simple), the date-layout cache and
// AEAD-helper cache (transform, Simple), and the custom-mask regex cache
// (transform, LRU). All are write-through on first use with
// last-writer-wins on duplicate concurrent computes, which is safe
// because every cached computation is idempotent over its key.
package cache
