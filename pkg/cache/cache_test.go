package cache

import (
	"fmt"
	"sync"
	"testing"
)

func testBasicOperations(t *testing.T, cache Cache[string]) {
	t.Helper()

	if value, exists := cache.Get("key1"); exists {
		t.Errorf("Expected cache miss, got value: %s", value)
	}

	isNew, err := cache.Set("key1", "value1")
	if err != nil {
		t.Fatalf("Unexpected error setting key: %v", err)
	}
	if !isNew {
		t.Error("Expected new entry creation")
	}

	if value, exists := cache.Get("key1"); !exists || value != "value1" {
		t.Errorf("Expected 'value1', got value: %s, exists: %t", value, exists)
	}

	isNew, err = cache.Set("key1", "value1_updated")
	if err != nil {
		t.Fatalf("Unexpected error updating key: %v", err)
	}
	if isNew {
		t.Error("Expected existing entry update")
	}

	if value, exists := cache.Get("key1"); !exists || value != "value1_updated" {
		t.Errorf("Expected 'value1_updated', got value: %s, exists: %t", value, exists)
	}

	deleted, err := cache.Delete("key1")
	if err != nil {
		t.Fatalf("Unexpected error deleting key: %v", err)
	}
	if !deleted {
		t.Error("Expected successful deletion")
	}

	deleted, err = cache.Delete("key1")
	if err != nil {
		t.Fatalf("Unexpected error deleting non-existent key: %v", err)
	}
	if deleted {
		t.Error("Expected deletion failure for non-existent key")
	}
}

func testSizeAndKeys(t *testing.T, cache Cache[string]) {
	t.Helper()

	if cache.Size() != 0 {
		t.Errorf("Expected size 0, got %d", cache.Size())
	}

	_, _ = cache.Set("key1", "value1")
	_, _ = cache.Set("key2", "value2")

	if cache.Size() != 2 {
		t.Errorf("Expected size 2, got %d", cache.Size())
	}

	keyMap := make(map[string]bool)
	for _, key := range cache.Keys() {
		keyMap[key] = true
	}
	if !keyMap["key1"] || !keyMap["key2"] {
		t.Errorf("Expected keys 'key1' and 'key2', got %v", cache.Keys())
	}

	_ = cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Expected size 0 after clear, got %d", cache.Size())
	}
}

func testRejectsEmptyKey(t *testing.T, cache Cache[string]) {
	t.Helper()

	if _, err := cache.Set("", "value"); err == nil {
		t.Error("Expected error for empty key")
	}
	if _, err := cache.Delete(""); err == nil {
		t.Error("Expected error for empty key delete")
	}
}

func TestSimpleCache(t *testing.T) {
	t.Run("BasicOperations", func(t *testing.T) {
		cache, err := NewSimple[string]()
		if err != nil {
			t.Fatal(err)
		}
		testBasicOperations(t, cache)
	})

	t.Run("SizeAndKeys", func(t *testing.T) {
		cache, err := NewSimple[string]()
		if err != nil {
			t.Fatal(err)
		}
		testSizeAndKeys(t, cache)
	})

	t.Run("RejectsEmptyKey", func(t *testing.T) {
		cache, err := NewSimple[string]()
		if err != nil {
			t.Fatal(err)
		}
		testRejectsEmptyKey(t, cache)
	})

	t.Run("Stats", func(t *testing.T) {
		cache, err := NewSimple[string]()
		if err != nil {
			t.Fatal(err)
		}

		_, _ = cache.Set("key", "value")
		cache.Get("key")
		cache.Get("absent")

		stats := cache.Stats()
		if stats == nil {
			t.Fatal("Expected stats to be collected")
		}
		if stats.Hits() != 1 || stats.Misses() != 1 || stats.Sets() != 1 {
			t.Errorf("Unexpected stats: hits=%d misses=%d sets=%d",
				stats.Hits(), stats.Misses(), stats.Sets())
		}
	})
}

func TestLRUCache(t *testing.T) {
	t.Run("BasicOperations", func(t *testing.T) {
		cache, err := NewLRU[string](10)
		if err != nil {
			t.Fatal(err)
		}
		testBasicOperations(t, cache)
	})

	t.Run("SizeAndKeys", func(t *testing.T) {
		cache, err := NewLRU[string](10)
		if err != nil {
			t.Fatal(err)
		}
		testSizeAndKeys(t, cache)
	})

	t.Run("EvictsLeastRecentlyUsed", func(t *testing.T) {
		cache, err := NewLRU[string](2)
		if err != nil {
			t.Fatal(err)
		}

		_, _ = cache.Set("a", "1")
		_, _ = cache.Set("b", "2")
		cache.Get("a") // "a" is now most recently used
		_, _ = cache.Set("c", "3")

		if _, exists := cache.Get("b"); exists {
			t.Error("Expected 'b' to be evicted")
		}
		if _, exists := cache.Get("a"); !exists {
			t.Error("Expected 'a' to survive eviction")
		}
		if cache.Size() != 2 {
			t.Errorf("Expected size 2 after eviction, got %d", cache.Size())
		}
		if cache.Stats().Evictions() != 1 {
			t.Errorf("Expected 1 recorded eviction, got %d", cache.Stats().Evictions())
		}
	})

	t.Run("EvictionCallback", func(t *testing.T) {
		var mu sync.Mutex
		evicted := make(map[string]string)

		cache, err := NewLRU[string](1,
			WithEvictionCallback[string](func(key, value string) {
				mu.Lock()
				evicted[key] = value
				mu.Unlock()
			}))
		if err != nil {
			t.Fatal(err)
		}

		_, _ = cache.Set("a", "1")
		_, _ = cache.Set("b", "2")

		mu.Lock()
		defer mu.Unlock()
		if evicted["a"] != "1" {
			t.Errorf("Expected eviction callback for 'a', got %v", evicted)
		}
	})

	t.Run("KeysInRecencyOrder", func(t *testing.T) {
		cache, err := NewLRU[string](3)
		if err != nil {
			t.Fatal(err)
		}

		_, _ = cache.Set("a", "1")
		_, _ = cache.Set("b", "2")
		cache.Get("a")

		keys := cache.Keys()
		if len(keys) != 2 || keys[0] != "a" {
			t.Errorf("Expected 'a' first in recency order, got %v", keys)
		}
	})
}

func TestNoopCache(t *testing.T) {
	cache := NewNoop[string]()

	if _, err := cache.Set("key", "value"); err != nil {
		t.Fatalf("Noop Set should not error: %v", err)
	}
	if _, exists := cache.Get("key"); exists {
		t.Error("Noop cache should always miss")
	}
	if cache.Size() != 0 {
		t.Error("Noop cache should report size 0")
	}
	if cache.Stats() != nil {
		t.Error("Noop cache should report nil stats")
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"simple", Config{Enabled: true, Strategy: StrategySimple}, false},
		{"lru", Config{Enabled: true, Strategy: StrategyLRU, MaxSize: 10}, false},
		{"disabled", Config{Enabled: false}, false},
		{"lru without size", Config{Enabled: true, Strategy: StrategyLRU}, true},
		{"unknown strategy", Config{Enabled: true, Strategy: "arc"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := NewFromConfig[string](tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cache == nil {
				t.Fatal("expected a cache")
			}
		})
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	caches := map[string]Cache[string]{}

	simple, err := NewSimple[string]()
	if err != nil {
		t.Fatal(err)
	}
	caches["Simple"] = simple

	lru, err := NewLRU[string](64)
	if err != nil {
		t.Fatal(err)
	}
	caches["LRU"] = lru

	for name, cache := range caches {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						key := fmt.Sprintf("key-%d-%d", id, j%10)
						_, _ = cache.Set(key, "value")
						cache.Get(key)
						if j%10 == 0 {
							_, _ = cache.Delete(key)
						}
					}
				}(i)
			}
			wg.Wait()
		})
	}
}
