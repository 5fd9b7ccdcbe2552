package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
)

var ErrCacheUnavailable = errors.New("memory cache unavailable")

type cacheEntry struct {
	url       string
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache is an in-process TTL cache for slug lookups.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	failing atomic.Bool
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Cache) Get(_ context.Context, slug string) (string, error) {
	if c.failing.Load() {
		return "", ErrCacheUnavailable
	}

	c.mu.RLock()
	entry, ok := c.entries[slug]
	c.mu.RUnlock()

	if !ok {
		return "", links.ErrCacheMiss
	}
	now := c.now()
	if entry.expired(now) {
		// a Set may have replaced the entry since the read lock was released
		c.mu.Lock()
		if cur, ok := c.entries[slug]; ok && cur.expired(now) {
			delete(c.entries, slug)
		}
		c.mu.Unlock()
		return "", links.ErrCacheMiss
	}
	return entry.url, nil
}

func (c *Cache) Set(_ context.Context, slug, url string, ttl time.Duration) error {
	if c.failing.Load() {
		return ErrCacheUnavailable
	}

	entry := cacheEntry{url: url}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[slug] = entry
	c.mu.Unlock()
	return nil
}

// SetFailing makes every subsequent call fail, simulating an unreachable cache.
func (c *Cache) SetFailing(failing bool) {
	c.failing.Store(failing)
}

// TTL reports the remaining lifetime of a key, or false when it is absent.
func (c *Cache) TTL(slug string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[slug]
	if !ok {
		return 0, false
	}
	return entry.expiresAt.Sub(c.now()), true
}
