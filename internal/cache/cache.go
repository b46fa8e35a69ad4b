package cache

import "sync"

// Cache is a generic thread-safe memo table without eviction.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	stats   Stats
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]V),
	}
}

// GetOrCreate returns the cached value for key or builds it.
//
// create runs under the lock, so it is invoked at most once per key until
// it succeeds. When create fails its error is returned and no entry is
// stored; a later call will invoke create again.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		c.stats.Hits++
		return v, nil
	}
	c.stats.Misses++

	v, err := create()
	if err != nil {
		c.stats.Failures++
		var zero V
		return zero, err
	}
	c.stats.Builds++
	c.entries[key] = v
	return v, nil
}

// Clear removes all entries from the cache. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]V)
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Len = len(c.entries)
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that found nothing.
	Misses uint64
	// Builds is the number of successful GetOrCreate builds.
	Builds uint64
	// Failures is the number of GetOrCreate builds that returned an error.
	Failures uint64
}
