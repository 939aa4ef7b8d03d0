// Package cache provides an in-memory TTL cache with ETag support.
package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TTLs for cached read endpoints. Writes invalidate entries early.
const (
	TTLStandings   = 5 * time.Minute
	TTLTournaments = 30 * time.Minute
)

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache.
//
// Every invalidation advances a generation counter. A reader that captured
// the generation before loading can store its result with SetIfGeneration,
// which refuses the write when an invalidation happened in between.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	gen     uint64
	enabled bool
}

// New creates a new cache. Pass enabled=false to create a no-op cache.
func New(enabled bool) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		enabled: enabled,
	}
	if enabled {
		go c.evictLoop()
	}
	return c
}

// Get retrieves a cached value. Returns data, etag, and whether the entry was found.
func (c *Cache) Get(key string) (data []byte, etag string, ok bool) {
	if !c.enabled {
		return nil, "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, "", false
	}
	return e.data, e.etag, true
}

// Set stores a value with a TTL unconditionally.
func (c *Cache) Set(key string, data []byte, ttl time.Duration) string {
	etag, _ := c.store(key, data, ttl, func() bool { return true })
	return etag
}

// Generation returns the current invalidation generation.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// SetIfGeneration stores a value only if no invalidation happened since gen
// was read. The ETag is returned either way so the caller can still answer.
func (c *Cache) SetIfGeneration(key string, data []byte, ttl time.Duration, gen uint64) (etag string, stored bool) {
	return c.store(key, data, ttl, func() bool { return c.gen == gen })
}

// store writes the entry under the lock when keep reports true.
func (c *Cache) store(key string, data []byte, ttl time.Duration, keep func() bool) (string, bool) {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !keep() {
		return etag, false
	}
	c.entries[key] = entry{
		data:      data,
		etag:      etag,
		expiresAt: time.Now().Add(ttl),
	}
	return etag, true
}

// InvalidatePrefix drops every entry whose key starts with prefix and
// returns how many were dropped. An empty prefix flushes the cache. The
// generation advances even when nothing was cached, since a load may be in
// flight.
func (c *Cache) InvalidatePrefix(prefix string) int {
	if !c.enabled {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	n := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Stats returns cache statistics.
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := time.Now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]interface{}{
		"enabled":      c.enabled,
		"generation":   c.gen,
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}
}

// evictLoop periodically removes expired entries.
func (c *Cache) evictLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.evict()
	}
}

func (c *Cache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	// Exact match only; lists of etags are not parsed
	return ifNoneMatch == etag
}
