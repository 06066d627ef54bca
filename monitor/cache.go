package monitor

import (
	"sync"
	"time"

	"snoop"
)

// Cache memoizes string-keyed results with a TTL and announces hits and
// misses at debug level, so cache behavior is visible in the same trace
// as the computation it shortcuts.
type Cache[V any] struct {
	TTL    time.Duration // entry lifetime; zero means entries never expire
	Prefix string        // announce prefix (default "CACHE")
	Sink   snoop.Sink    // announce destination; nil means the process default

	mu      sync.Mutex
	entries map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	val     V
	expires time.Time
}

// Get returns the cached value for key, computing and storing it on a
// miss. Errors from compute are returned without caching.
func (c *Cache[V]) Get(key string, compute func() (V, error)) (V, error) {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "CACHE"
	}

	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]cacheEntry[V])
	}
	if e, ok := c.entries[key]; ok && (e.expires.IsZero() || time.Now().Before(e.expires)) {
		c.mu.Unlock()
		snoop.ShowTo(c.sink(), snoop.LevelDebug, prefix, "hit", key)
		return e.val, nil
	}
	c.mu.Unlock()

	snoop.ShowTo(c.sink(), snoop.LevelDebug, prefix, "miss", key)
	val, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	e := cacheEntry[V]{val: val}
	if c.TTL > 0 {
		e.expires = time.Now().Add(c.TTL)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return val, nil
}

// Invalidate drops the entry for key, if any.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not
// yet evicted by a Get.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) sink() snoop.Sink {
	if c.Sink != nil {
		return c.Sink
	}
	return snoop.Default()
}
