// Package cache provides the TTL result cache shared by the engine's query operations.
package cache

import (
	"sync"
	"time"
)

// TTL is how long an entry stays valid after it was stored.
const TTL = 5 * time.Minute

// Entry is a cached value together with its insertion time.
type Entry struct {
	Key       string
	Value     any
	CreatedAt time.Time
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// ResultCache is a mutex-guarded map with lazy expiry on lookup.
// Concurrent misses for the same key may both compute and both store; the last write wins.
type ResultCache struct {
	mu     sync.Mutex
	items  map[string]Entry
	now    func() time.Time
	hits   int64
	misses int64
}

// New creates an empty cache using the wall clock.
func New() *ResultCache {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty cache that reads time from now.
func NewWithClock(now func() time.Time) *ResultCache {
	if now == nil {
		now = time.Now
	}
	return &ResultCache{
		items: make(map[string]Entry),
		now:   now,
	}
}

// Get returns the value stored under key if it is still within TTL.
// Expired entries are dropped and reported as absent.
func (c *ResultCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	if !c.valid(entry, c.now()) {
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.Value, true
}

// Set stores value under key, replacing any previous entry.
func (c *ResultCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Entry{
		Key:       key,
		Value:     value,
		CreatedAt: c.now(),
	}
}

// ClearAll removes every entry.
func (c *ResultCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]Entry)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.items {
		if !c.valid(entry, now) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including ones not yet swept.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the hit/miss counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Hits:   c.hits,
		Misses: c.misses,
		Size:   len(c.items),
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

func (c *ResultCache) valid(entry Entry, now time.Time) bool {
	return now.Sub(entry.CreatedAt) < TTL
}
