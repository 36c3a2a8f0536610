// Package cache is a small explicit memoization port for expensive
// calculations (period revenue, mostly). Components take the interface; no
// wrapping magic.
package cache

import (
	"sync"
	"time"
)

type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is a TTL map cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var _ Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (c *Memory) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, false
	}

	return e.value, true
}

// Set stores a value. A non-positive ttl means no expiry.
func (c *Memory) Set(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Nop caches nothing.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(string) (any, bool) { return nil, false }

func (Nop) Set(string, any, time.Duration) {}
