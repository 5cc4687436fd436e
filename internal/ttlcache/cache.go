// Package ttlcache is a small in-process cache with a per-entry TTL and a size cap.
// When full, the oldest inserted entry is evicted.
package ttlcache

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[K]entry[V]
	order      []K
	now        func() time.Time

	evictions atomic.Int64
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithClock replaces time.Now. Used in tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *Cache[K, V]) { c.now = now }
}

// New creates a cache. A non-positive maxEntries disables the size cap.
func New[K comparable, V any](ttl time.Duration, maxEntries int, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[K]entry[V]),
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the value for key. Expired entries are removed and reported as absent.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(key)
		c.evictions.Add(1)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache TTL. Overwriting a key keeps
// its original insertion position.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = e
		return
	}

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.evictions.Add(1)
	}

	c.entries[key] = e
	c.order = append(c.order, key)
}

// DeleteFunc removes every entry for which fn returns true and returns how many were removed.
// Removed entries count as evictions.
func (c *Cache[K, V]) DeleteFunc(fn func(K, V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if fn(key, e.value) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.order = slices.DeleteFunc(c.order, func(k K) bool {
			_, ok := c.entries[k]
			return !ok
		})
		c.evictions.Add(int64(removed))
	}
	return removed
}

// Clear empties the cache and returns the number of entries removed.
// Removed entries count as evictions.
func (c *Cache[K, V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[K]entry[V])
	c.order = nil
	c.evictions.Add(int64(n))
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Evictions returns the number of entries removed by expiry, capacity or deletion.
func (c *Cache[K, V]) Evictions() int64 {
	return c.evictions.Load()
}

func (c *Cache[K, V]) removeLocked(key K) {
	delete(c.entries, key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}
