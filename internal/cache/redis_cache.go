package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"blogfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces response cache keys in a shared Redis.
const DefaultPrefix = "pagecache"

const scanBatch = 200

// RedisCache is a ResponseCache shared by every process pointed at the same
// Redis. Entries live under <prefix>:<epoch>:<key>. ClearAll is a single
// INCR of <prefix>:epoch, which makes every older namespace unreachable at
// once. Old namespaces are then deleted on a best-effort basis.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	log    *observability.CacheLogger
}

// NewRedisCache wraps rdb. An empty prefix falls back to DefaultPrefix.
func NewRedisCache(rdb *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisCache{
		rdb:    rdb,
		prefix: prefix,
		log:    observability.NewCacheLogger("redis"),
	}
}

func (c *RedisCache) epochKey() string {
	return c.prefix + ":epoch"
}

func (c *RedisCache) entryKey(epoch uint64, key string) string {
	return c.prefix + ":" + strconv.FormatUint(epoch, 10) + ":" + key
}

func (c *RedisCache) currentEpoch(ctx context.Context) (uint64, error) {
	n, err := c.rdb.Get(ctx, c.epochKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	epoch, err := c.currentEpoch(ctx)
	if err != nil {
		c.log.LogError(ctx, "epoch", err)
		observability.ResponseCacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}

	payload, err := c.rdb.Get(ctx, c.entryKey(epoch, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.LogError(ctx, "get", err)
		}
		observability.ResponseCacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}
	observability.ResponseCacheLookups.WithLabelValues("redis", "hit").Inc()
	return payload, true
}

func (c *RedisCache) Put(ctx context.Context, key string, payload []byte) {
	epoch, err := c.currentEpoch(ctx)
	if err != nil {
		c.log.LogError(ctx, "epoch", err)
		return
	}
	c.PutAt(ctx, epoch, key, payload)
}

// PutAt writes into the namespace of epoch. If the epoch has moved on,
// either before or during the write, the entry is dropped.
func (c *RedisCache) PutAt(ctx context.Context, epoch uint64, key string, payload []byte) {
	current, err := c.currentEpoch(ctx)
	if err != nil {
		c.log.LogError(ctx, "epoch", err)
		return
	}
	if current != epoch {
		observability.ResponseCacheStaleWrites.WithLabelValues("redis").Inc()
		return
	}

	entry := c.entryKey(epoch, key)
	if err := c.rdb.Set(ctx, entry, payload, 0).Err(); err != nil {
		c.log.LogError(ctx, "set", err)
		return
	}

	// A clear that landed between the check and the SET leaves the entry in
	// a dead namespace; remove it so the cleanup scan has less to do.
	if after, err := c.currentEpoch(ctx); err == nil && after != epoch {
		observability.ResponseCacheStaleWrites.WithLabelValues("redis").Inc()
		c.rdb.Del(ctx, entry)
	}
}

func (c *RedisCache) ClearAll(ctx context.Context) {
	next, err := c.rdb.Incr(ctx, c.epochKey()).Uint64()
	if err != nil {
		c.log.LogError(ctx, "incr", err)
		return
	}
	if err := c.purgeBefore(ctx, next); err != nil {
		c.log.LogError(ctx, "purge", err)
	}
}

func (c *RedisCache) Epoch(ctx context.Context) uint64 {
	epoch, err := c.currentEpoch(ctx)
	if err != nil {
		c.log.LogError(ctx, "epoch", err)
		return 0
	}
	return epoch
}

// purgeBefore deletes entries from namespaces older than epoch.
func (c *RedisCache) purgeBefore(ctx context.Context, epoch uint64) error {
	head := c.prefix + ":"
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, head+"*", scanBatch).Result()
		if err != nil {
			return err
		}

		stale := keys[:0]
		for _, k := range keys {
			rest := strings.TrimPrefix(k, head)
			seg, _, ok := strings.Cut(rest, ":")
			if !ok {
				continue
			}
			n, err := strconv.ParseUint(seg, 10, 64)
			if err != nil || n >= epoch {
				continue
			}
			stale = append(stale, k)
		}
		if len(stale) > 0 {
			if err := c.rdb.Del(ctx, stale...).Err(); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
