// internal/server/cache.go
package server

import (
	"sync"
	"time"
)

// ResultsTag is the cache tag under which merged results are memoized.
const ResultsTag = "test-results"

type cacheEntry struct {
	value   any
	expires time.Time
}

// Cache is a small tag-keyed response cache with a bounded TTL and
// explicit tag invalidation. Every derived value is recomputed from the
// log files on miss; nothing is ever updated in place.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache whose entries live for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the live value stored under tag, if any.
func (c *Cache) Get(tag string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[tag]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, tag)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under tag for the cache's TTL.
func (c *Cache) Set(tag string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tag] = cacheEntry{value: value, expires: c.now().Add(c.ttl)}
}

// Invalidate drops the entry stored under tag.
func (c *Cache) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tag)
}
