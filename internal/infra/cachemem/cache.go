// Package cachemem is a small TTL cache for resolved key records. Only
// successful resolutions are stored; negative results must not be cached
// indefinitely, so they are never stored at all.
package cachemem

import (
	"sync"
	"time"

	"recall/internal/domain"
)

type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     domain.KeyRecord
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(key string) (domain.KeyRecord, bool) {
	if c == nil {
		return domain.KeyRecord{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return domain.KeyRecord{}, false
	}
	if entry.hasExpiry && time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return domain.KeyRecord{}, false
	}
	return entry.value, true
}

func (c *Cache) Put(key string, value domain.KeyRecord, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry
}
