// Package toolcache is the shared gateway every analysis role goes through
// for supporting lookups: semantic code search, reading related files,
// finding usages and callers. It guarantees that identical requests are
// served from a TTL-bound cache without consuming budget, and that each
// (file, capability) pair performs at most its budgeted number of uncached
// operations per run.
package toolcache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultTTL bounds how long a cache instance serves entries before the
// whole cache is considered stale.
const DefaultTTL = 30 * time.Minute

// Cache is a keyed result cache with coarse-grained expiry: one TTL is set
// at construction and the entire cache invalidates at once when the age
// since construction exceeds it. Entries are never individually expired.
// All methods are safe for concurrent use.
type Cache struct {
	ttl       time.Duration
	createdAt time.Time
	now       func() time.Time

	mu      sync.RWMutex
	entries map[string]any
}

// NewCache creates a Cache with the given TTL. A non-positive ttl falls
// back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:       ttl,
		createdAt: time.Now(),
		now:       time.Now,
		entries:   make(map[string]any),
	}
}

// Has reports whether key is present and the cache is still fresh.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Get returns the cached value for key, or (nil, false) on a miss or when
// the cache as a whole has expired.
func (c *Cache) Get(key string) (any, bool) {
	if c.expired() {
		c.reset()
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// Set stores value under key.
func (c *Cache) Set(key string, value any) {
	if c.expired() {
		c.reset()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c.expired() {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().Sub(c.createdAt) > c.ttl
}

// reset drops every entry and restarts the TTL window.
func (c *Cache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
	c.createdAt = c.now()
}

// Fingerprint canonicalizes a request into a fixed-width cache key: the
// query is lower-cased and trimmed, filters are sorted, and the result
// limit is part of the key. Two requests that differ only in casing,
// surrounding whitespace or filter order share one entry.
func Fingerprint(query string, filters []string, limit int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))

	sorted := make([]string, len(filters))
	for i, f := range filters {
		sorted[i] = strings.ToLower(strings.TrimSpace(f))
	}
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(normalized)
	b.WriteByte('\x00')
	b.WriteString(strings.Join(sorted, "\x01"))
	b.WriteByte('\x00')
	b.WriteString(strconv.Itoa(limit))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
