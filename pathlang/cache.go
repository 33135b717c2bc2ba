package pathlang

import (
	"fmt"

	"github.com/c360/mapengine/pkg/cache"
)

// Cache is the process-wide compiled-path cache: get-or-compute keyed by
// path text, write-through on first use, last-writer-wins on duplicate
// concurrent compiles (the cache package's Set simply overwrites, which
// is equivalent to last-writer-wins since compiling the same text is
// idempotent). It grows monotonically, bounded in practice by the
// number of distinct path texts a mapping's templates declare.
type Cache struct {
	store cache.Cache[*Path]
}

// NewCache constructs an empty compiled-path cache.
func NewCache() *Cache {
	c, err := cache.NewSimple[*Path]()
	if err != nil {
		// NewSimple only fails on invalid options; none are passed here.
		panic(fmt.Sprintf("pathlang: failed to initialize path cache: %v", err))
	}
	return &Cache{store: c}
}

// CompileCached returns the Path for text, compiling and caching it on
// first use. Compile errors are not cached.
func (c *Cache) CompileCached(text string) (*Path, error) {
	if p, ok := c.store.Get(text); ok {
		return p, nil
	}
	p, err := Compile(text)
	if err != nil {
		return nil, err
	}
	c.store.Set(text, p)
	return p, nil
}

// global is the default process-wide cache used by CompileCachedGlobal
// when no per-component Cache is threaded through explicitly.
var global = NewCache()

// CompileCachedGlobal compiles text through the default process-wide cache.
func CompileCachedGlobal(text string) (*Path, error) {
	return global.CompileCached(text)
}
