package names

import (
	"sync"
	"sync/atomic"
	"time"
)

type cacheEntry struct {
	value      string
	insertedAt time.Time
	expiresAt  time.Time
}

// ttlCache is a bounded map with per-entry expiry. At capacity the
// oldest-inserted entry is evicted before insertion. An expired entry is
// never returned from a hit.
type ttlCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	max     int
	label   string

	hits   atomic.Int64
	misses atomic.Int64
}

func newTTLCache(label string, ttl time.Duration, max int) *ttlCache {
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		max:     max,
		label:   label,
	}
}

func (c *ttlCache) get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		c.misses.Add(1)
		nameMetrics.lookups.WithLabelValues(c.label, "miss").Inc()
		return "", false
	}
	c.hits.Add(1)
	nameMetrics.lookups.WithLabelValues(c.label, "hit").Inc()
	return entry.value, true
}

func (c *ttlCache) set(key, value string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(c.ttl),
	}
}

// evictOldestLocked removes the oldest-inserted entry. Caller holds the
// write lock.
func (c *ttlCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.insertedAt.Before(oldest) {
			oldestKey, oldest, first = key, entry.insertedAt, false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *ttlCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ttlCache) stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
