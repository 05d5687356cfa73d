// Package cache holds the owned in-process caches of the engine. Each cache
// is an explicit collaborator passed to the components that read it, never a
// process-global map.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CountFunc loads a catalog size from the store.
type CountFunc func(ctx context.Context, country, language string) (int, error)

type countEntry struct {
	value   int
	expires time.Time
}

// CatalogCounts caches per-(country, language) catalog sizes with a TTL so
// stats and exam-settings computations do not hit the questions table on
// every request.
type CatalogCounts struct {
	ttl  time.Duration
	load CountFunc

	mu      sync.Mutex
	entries map[string]countEntry
}

// NewCatalogCounts creates a cache that loads misses through load and keeps
// entries for ttl.
func NewCatalogCounts(ttl time.Duration, load CountFunc) *CatalogCounts {
	return &CatalogCounts{
		ttl:     ttl,
		load:    load,
		entries: make(map[string]countEntry),
	}
}

func countKey(country, language string) string {
	return strings.ToLower(country) + "/" + strings.ToLower(language)
}

// Get returns the catalog size for a country/language pair, loading and
// caching it on a miss or after expiry.
func (c *CatalogCounts) Get(ctx context.Context, country, language string) (int, error) {
	key := countKey(country, language)
	now := time.Now()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && now.Before(entry.expires) {
		c.mu.Unlock()
		return entry.value, nil
	}
	c.mu.Unlock()

	value, err := c.load(ctx, country, language)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.entries[key] = countEntry{value: value, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops the cached size for one pair, forcing the next Get to
// reload. Used after catalog imports.
func (c *CatalogCounts) Invalidate(country, language string) {
	c.mu.Lock()
	delete(c.entries, countKey(country, language))
	c.mu.Unlock()
}

// Sweep evicts expired entries and returns how many were dropped.
func (c *CatalogCounts) Sweep() int {
	now := time.Now()
	evicted := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			evicted++
		}
	}
	c.mu.Unlock()
	return evicted
}

// Len returns the number of live entries.
func (c *CatalogCounts) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
