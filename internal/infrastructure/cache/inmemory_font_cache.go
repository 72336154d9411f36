// Package cache provides byte caches for downloaded font files.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
)

// entry is a cached value with its expiration
type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryFontCache implements fonts.ByteCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryFontCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryFontCache creates a new in-memory cache.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryFontCache() *InMemoryFontCache {
	c := &InMemoryFontCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached bytes for key if present and not expired
func (c *InMemoryFontCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores data under key for ttl. A non-positive ttl keeps the entry
// until Close.
func (c *InMemoryFontCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	if ttl <= 0 {
		expiresAt = time.Now().Add(100 * 365 * 24 * time.Hour)
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (c *InMemoryFontCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryFontCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries
func (c *InMemoryFontCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries (for testing/monitoring)
func (c *InMemoryFontCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ fonts.ByteCache = (*InMemoryFontCache)(nil)
