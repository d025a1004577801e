// Package cache holds scaled model payloads keyed by source URL and
// requested maximum dimension. In-memory only; restart clears it.
package cache

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/openheritage/arscale/internal/scaling"
)

const (
	// DefaultTTL is how long a scaled payload stays servable.
	DefaultTTL = time.Hour

	// DefaultSweepThreshold is the entry count above which a Put first
	// sweeps out expired entries. Coarse on purpose; the cache tolerates
	// hour-granularity staleness and needs no strict LRU.
	DefaultSweepThreshold = 50
)

// Entry is one cached scaling outcome.
type Entry struct {
	Payload     []byte
	ContentType string
	Result      scaling.Result
	CreatedAt   time.Time
}

// Age returns how long ago the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// ModelCache is safe for concurrent use. Construct one per process (or
// per test) with New and hand it to the scaling service; there is no
// package-level instance.
type ModelCache struct {
	mu             sync.RWMutex
	entries        map[string]*Entry
	ttl            time.Duration
	sweepThreshold int
}

// New returns an empty cache. Non-positive ttl or sweepThreshold fall
// back to the defaults.
func New(ttl time.Duration, sweepThreshold int) *ModelCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepThreshold <= 0 {
		sweepThreshold = DefaultSweepThreshold
	}
	return &ModelCache{
		entries:        make(map[string]*Entry),
		ttl:            ttl,
		sweepThreshold: sweepThreshold,
	}
}

// Key builds the cache key for a source URL and max dimension. The URL is
// normalized (trimmed, lowercased scheme and host, fragment dropped) so
// trivially different spellings share an entry; distinct max dimensions
// never share one, since the scale factor depends on both.
func Key(sourceURL string, maxDimension float64) string {
	return fmt.Sprintf("%s|%.6f", normalizeURL(sourceURL), maxDimension)
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String()
}

// Get returns the entry for key if present and still within the TTL.
// Expired entries behave as misses and are dropped on the spot.
func (c *ModelCache) Get(key string) (*Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if entry.Age() > c.ttl {
		c.deleteIfSame(key, entry)
		return nil, false
	}
	return entry, true
}

// deleteIfSame drops the entry under key only when it is still the one
// the caller saw. A concurrent Put between the read and the write lock
// must not have its fresh entry swept away.
func (c *ModelCache) deleteIfSame(key string, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.entries[key]; ok && current == entry {
		delete(c.entries, key)
	}
}

// Put stores entry under key, stamping CreatedAt if unset. When the cache
// has grown past the sweep threshold, expired entries are removed first.
func (c *ModelCache) Put(key string, entry *Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > c.sweepThreshold {
		c.sweepExpiredLocked()
	}
	c.entries[key] = entry
}

// SweepExpired removes every entry older than the TTL and reports how
// many were dropped.
func (c *ModelCache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepExpiredLocked()
}

func (c *ModelCache) sweepExpiredLocked() int {
	removed := 0
	for key, entry := range c.entries {
		if entry.Age() > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops every entry. Intended for tests.
func (c *ModelCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Size returns the current entry count, expired or not.
func (c *ModelCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns a snapshot of the stored keys in no particular order.
func (c *ModelCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// TTL returns the configured time-to-live.
func (c *ModelCache) TTL() time.Duration {
	return c.ttl
}
