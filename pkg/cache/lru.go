package cache

import (
	"container/list"
	"sync"

	"github.com/c360/mapengine/errors"
)

type lruEntry[V any] struct {
	key   string
	value V
}

// lruCache is a thread-safe least-recently-used cache: once maxSize is
// exceeded, the entry that has gone longest without a Get or Set is
// dropped. Eviction callbacks run outside the lock.
type lruCache[V any] struct {
	mu      sync.RWMutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	stats   *Statistics
	metrics *cacheMetrics // nil unless WithMetrics was given
	evictFn EvictCallback[V]
}

func newLRUCache[V any](maxSize int, opts *cacheOptions[V]) (*lruCache[V], error) {
	var metrics *cacheMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "newLRUCache", "metrics registration")
		}
	}

	return &lruCache[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   NewStatistics(),
		metrics: metrics,
		evictFn: opts.evictCallback,
	}, nil
}

// Get retrieves a value by key and marks it most recently used.
func (c *lruCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	element, exists := c.items[key]
	var value V
	if exists {
		c.order.MoveToFront(element)
		value = element.Value.(*lruEntry[V]).value
	}
	c.mu.Unlock()

	if !exists {
		c.stats.Miss()
		c.metrics.recordMiss()
		return value, false
	}

	c.stats.Hit()
	c.metrics.recordHit()
	return value, true
}

// Set stores a value and marks it most recently used, evicting the
// least recently used entry if the cache is over capacity.
func (c *lruCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var evictedKey string
	var evictedValue V
	evicted := false

	c.mu.Lock()
	if element, exists := c.items[key]; exists {
		element.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(element)
		c.mu.Unlock()

		c.stats.Set()
		c.metrics.recordSet()
		return false, nil
	}

	c.items[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})

	if len(c.items) > c.maxSize {
		if back := c.order.Back(); back != nil {
			entry := back.Value.(*lruEntry[V])
			evictedKey, evictedValue, evicted = entry.key, entry.value, true
			delete(c.items, entry.key)
			c.order.Remove(back)
		}
	}
	size := len(c.items)
	c.mu.Unlock()

	c.stats.Set()
	c.stats.UpdateSize(int64(size))
	c.metrics.recordSet()
	c.metrics.updateSize(size)
	if evicted {
		c.stats.Eviction()
		c.metrics.recordEviction()
		if c.evictFn != nil {
			c.evictFn(evictedKey, evictedValue)
		}
	}

	return true, nil
}

// Delete removes an entry by key.
func (c *lruCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	element, exists := c.items[key]
	var value V
	if exists {
		value = element.Value.(*lruEntry[V]).value
		delete(c.items, key)
		c.order.Remove(element)
	}
	size := len(c.items)
	c.mu.Unlock()

	if !exists {
		return false, nil
	}

	c.stats.Delete()
	c.stats.UpdateSize(int64(size))
	c.metrics.recordDelete()
	c.metrics.updateSize(size)

	if c.evictFn != nil {
		c.evictFn(key, value)
	}
	return true, nil
}

// Clear removes all entries.
func (c *lruCache[V]) Clear() error {
	c.mu.Lock()
	var dropped []lruEntry[V]
	if c.evictFn != nil {
		dropped = make([]lruEntry[V], 0, len(c.items))
		for element := c.order.Back(); element != nil; element = element.Prev() {
			dropped = append(dropped, *element.Value.(*lruEntry[V]))
		}
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.mu.Unlock()

	c.stats.UpdateSize(0)
	c.metrics.updateSize(0)

	for _, entry := range dropped {
		c.evictFn(entry.key, entry.value)
	}
	return nil
}

// Size returns the current number of entries.
func (c *lruCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns all current keys, most recently used first.
func (c *lruCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for element := c.order.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*lruEntry[V]).key)
	}
	return keys
}

// Stats returns the cache's statistics tracker.
func (c *lruCache[V]) Stats() *Statistics {
	return c.stats
}

// Close is a no-op; LRU caches own no background resources.
func (c *lruCache[V]) Close() error {
	return nil
}
