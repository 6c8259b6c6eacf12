package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Expiry is checked on read: an expired
// entry is removed by the Get that finds it. An optional sweep goroutine
// also removes entries nobody asks for again.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time

	sweepInterval time.Duration
	stopSweep     chan struct{}
	closeOnce     sync.Once
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSweepInterval starts a background goroutine that drops expired entries
// every d. d <= 0 leaves expiry purely lazy.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *MemoryCache) {
		c.sweepInterval = d
	}
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		items:     make(map[string]memoryEntry),
		now:       time.Now,
		stopSweep: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sweepInterval > 0 {
		go c.sweepLoop()
	}

	return c
}

// Get returns a copy of the value for key if it was stored less than its
// TTL ago.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	now := c.now()
	if !now.Before(entry.expiresAt) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if e, exists := c.items[key]; exists && !now.Before(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Set stores value under key for ttl. A non-positive ttl removes the key.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.mu.Lock()
	c.items[key] = memoryEntry{
		value:     valueCopy,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()

	return nil
}

func (c *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stopSweep:
			return
		}
	}
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *MemoryCache) Sweep() int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for k, v := range c.items {
		if !now.Before(v.expiresAt) {
			delete(c.items, k)
			removed++
		}
	}
	c.mu.Unlock()

	return removed
}

// Close stops the sweep goroutine, if any.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopSweep)
	})
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]memoryEntry)
	c.mu.Unlock()
}
