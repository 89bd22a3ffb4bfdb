package cache

import (
	"context"
	"sync"

	"blogfeed/internal/observability"
)

// MemoryCache is a process-local ResponseCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	epoch   uint64
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	payload, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		observability.ResponseCacheLookups.WithLabelValues("memory", "miss").Inc()
		return nil, false
	}
	observability.ResponseCacheLookups.WithLabelValues("memory", "hit").Inc()
	return clone(payload), true
}

func (c *MemoryCache) Put(ctx context.Context, key string, payload []byte) {
	c.PutAt(ctx, c.Epoch(ctx), key, payload)
}

func (c *MemoryCache) PutAt(_ context.Context, epoch uint64, key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		observability.ResponseCacheStaleWrites.WithLabelValues("memory").Inc()
		return
	}
	c.entries[key] = clone(payload)
}

// ClearAll drops every entry. The swap happens under the write lock, so no
// reader sees a partially cleared map.
func (c *MemoryCache) ClearAll(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.epoch++
	c.mu.Unlock()
}

func (c *MemoryCache) Epoch(_ context.Context) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Len reports the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
