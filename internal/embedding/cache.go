package embedding

import (
	"sync"
	"sync/atomic"
)

// DefaultCacheSize is the default capacity of the embedding cache.
const DefaultCacheSize = 10000

// Cache is a bounded fingerprint→embedding map. Overflow evicts the oldest
// tenth of capacity in one batch, by insertion order; insertion-order FIFO
// rather than LRU is a deliberate simplicity tradeoff, since hot texts
// re-populate on the next query anyway. Reads and writes are point
// operations under a single RWMutex; callers never receive a slice aliasing
// cache memory.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[uint64][]float32
	order    []uint64 // insertion order, oldest first

	hits      atomic.Uint64
	misses    atomic.Uint64
	puts      atomic.Uint64
	evictions atomic.Uint64

	metrics *cacheMetrics
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// NewCache creates a cache with the given capacity. Capacities below 1 fall
// back to DefaultCacheSize.
func NewCache(capacity int, opts ...CacheOption) *Cache {
	if capacity < 1 {
		capacity = DefaultCacheSize
	}
	c := &Cache{
		capacity: capacity,
		entries:  make(map[uint64][]float32, capacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the embedding stored for fp, if present.
func (c *Cache) Get(fp uint64) ([]float32, bool) {
	c.mu.RLock()
	vec, ok := c.entries[fp]
	var cp []float32
	if ok {
		cp = copyVector(vec)
	}
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
		c.metrics.hit()
		return cp, true
	}
	c.misses.Add(1)
	c.metrics.miss()
	return nil, false
}

// Put stores a copy of vec under fp, inserting or overwriting. An overwrite
// keeps the entry's original insertion position. When the insert pushes the
// size past capacity, the oldest ⌈capacity/10⌉ entries are evicted in one
// batch before Put returns.
func (c *Cache) Put(fp uint64, vec []float32) {
	cp := copyVector(vec)

	c.mu.Lock()
	if _, exists := c.entries[fp]; exists {
		c.entries[fp] = cp
	} else {
		c.entries[fp] = cp
		c.order = append(c.order, fp)
		if len(c.entries) > c.capacity {
			c.evictLocked()
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.puts.Add(1)
	c.metrics.put(size)
}

// evictLocked removes the oldest tenth of capacity (at least one entry).
// Callers must hold the write lock.
func (c *Cache) evictLocked() {
	n := (c.capacity + 9) / 10
	if n < 1 {
		n = 1
	}
	if n > len(c.order) {
		n = len(c.order)
	}
	for _, fp := range c.order[:n] {
		delete(c.entries, fp)
	}
	remaining := make([]uint64, len(c.order)-n)
	copy(remaining, c.order[n:])
	c.order = remaining

	c.evictions.Add(uint64(n))
	c.metrics.evict(n)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Capacity returns the configured capacity bound.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Purge drops every entry. Counters are not reset.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[uint64][]float32, c.capacity)
	c.order = nil
	c.mu.Unlock()
	c.metrics.setSize(0)
}

// Stats returns a snapshot of the cache counters and size.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Puts:      c.puts.Load(),
		Evictions: c.evictions.Load(),
		Size:      size,
		Capacity:  c.capacity,
	}
}
