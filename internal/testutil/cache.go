package testutil

import (
	"context"
	"sync/atomic"

	"blogfeed/internal/cache"
)

// CountingCache wraps a ResponseCache and counts ClearAll calls.
type CountingCache struct {
	cache.ResponseCache
	clears atomic.Int64
}

// NewCountingCache wraps c. A nil c gets a fresh MemoryCache.
func NewCountingCache(c cache.ResponseCache) *CountingCache {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &CountingCache{ResponseCache: c}
}

func (c *CountingCache) ClearAll(ctx context.Context) {
	c.clears.Add(1)
	c.ResponseCache.ClearAll(ctx)
}

// Clears returns how many times ClearAll ran.
func (c *CountingCache) Clears() int64 {
	return c.clears.Load()
}

// Len reports the wrapped cache's entry count, or -1 if it cannot tell.
func (c *CountingCache) Len() int {
	if sized, ok := c.ResponseCache.(interface{ Len() int }); ok {
		return sized.Len()
	}
	return -1
}
