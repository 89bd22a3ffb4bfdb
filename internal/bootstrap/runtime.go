// Package bootstrap wires the process-wide dependencies: database, Redis
// and the response cache backend.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"blogfeed/internal/cache"
	"blogfeed/internal/config"
	"blogfeed/internal/database"
	"blogfeed/internal/middleware"
	"blogfeed/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedGroups upserts the built-in groups after connecting.
	SeedGroups bool
}

// Runtime is what InitRuntime hands to the server and CLIs.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Cache cache.ResponseCache
}

// InitRuntime connects to the database and Redis and picks the response
// cache backend. Redis is optional unless the cache must live there in
// production.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			middleware.Logger.Warn("redis unavailable", slog.String("error", err.Error()))
			rdb = nil
		}
	}

	rt := &Runtime{DB: db, Redis: rdb}
	if rt.Cache, err = NewResponseCache(cfg, rdb); err != nil {
		rt.Close()
		return nil, err
	}

	if opts.SeedGroups {
		if _, err := seed.Groups(db); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to seed built-in groups: %w", err)
		}
	}

	return rt, nil
}

// NewResponseCache returns the backend named by cfg.CacheBackend. A redis
// backend without a client degrades to memory outside production, where a
// per-process cache would serve different pages from different replicas.
func NewResponseCache(cfg *config.Config, rdb *redis.Client) (cache.ResponseCache, error) {
	switch cfg.CacheBackend {
	case "", "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		if rdb != nil {
			return cache.NewRedisCache(rdb, cfg.CachePrefix), nil
		}
		if cfg.IsProduction() {
			return nil, fmt.Errorf("CACHE_BACKEND=redis but redis at %q is unreachable", cfg.RedisURL)
		}
		middleware.Logger.Warn("falling back to in-memory response cache", slog.String("redis_url", cfg.RedisURL))
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}

// Close releases the database and Redis connections.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	closeDB(r.DB)
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
