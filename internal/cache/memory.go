package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process fallback used when no redis address is configured
// (dev, tests). Same contract as the redis cache, no cross-instance sharing.
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val []byte
	exp time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Memory) Get(ctx context.Context, trackingNumber string) ([]byte, bool) {
	key := trackingKey(trackingNumber)
	now := time.Now()

	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Memory) Set(ctx context.Context, trackingNumber string, payload []byte) {
	c.mu.Lock()
	c.m[trackingKey(trackingNumber)] = entry{val: payload, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Invalidate(ctx context.Context, trackingNumber string) {
	c.mu.Lock()
	delete(c.m, trackingKey(trackingNumber))
	c.mu.Unlock()
}
