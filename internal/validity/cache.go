package validity

import (
	"sync"
	"time"
)

// Cache absorbs duplicate near-simultaneous requests (dashboard re-renders).
// It is not correctness-bearing: a miss just recomputes. The interface
// exists so tests can swap in NopCache.
type Cache interface {
	Get(key string) (*Report, bool)
	Put(key string, value *Report, ttl time.Duration)
}

// TTLCache is a bounded in-memory cache with per-entry expiry.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]ttlEntry
	max     int
}

type ttlEntry struct {
	value   *Report
	expires time.Time
}

// NewTTLCache bounds the cache at max entries; expired entries are evicted
// lazily and on insert.
func NewTTLCache(max int) *TTLCache {
	if max <= 0 {
		max = 64
	}
	return &TTLCache{entries: make(map[string]ttlEntry), max: max}
}

func (c *TTLCache) Get(key string) (*Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *TTLCache) Put(key string, value *Report, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	// Full and nothing expired: drop an arbitrary entry to stay bounded.
	if len(c.entries) >= c.max {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = ttlEntry{value: value, expires: now.Add(ttl)}
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(string) (*Report, bool)         { return nil, false }
func (NopCache) Put(string, *Report, time.Duration) {}
