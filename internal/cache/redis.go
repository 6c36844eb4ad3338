package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sentiboard/internal/domain"
)

// Compile-time interface check.
var _ Store = (*Redis)(nil)

// redisNamespace prefixes every cache key so the bundles share a database
// with other tenants without colliding.
const redisNamespace = "sentiboard:bundle:"

// Redis stores bundles in a shared redis, expiring them by TTL instead of
// LRU bookkeeping. A nil client degrades every lookup to a miss.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewRedis creates a Redis store. A non-positive ttl defaults to one hour.
func NewRedis(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the bundle under key. A corrupted entry is deleted and
// reported as a miss so the caller regenerates it.
func (r *Redis) Get(ctx context.Context, key string) (domain.Bundle, bool, error) {
	if r.rdb == nil {
		return domain.Bundle{}, false, nil
	}

	raw, err := r.rdb.Get(ctx, redisNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Bundle{}, false, nil
	}
	if err != nil {
		return domain.Bundle{}, false, err
	}

	var bundle domain.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		_ = r.rdb.Del(ctx, redisNamespace+key).Err()
		r.log.Warn("dropping corrupted cache entry", "key", key, "error", err)
		return domain.Bundle{}, false, nil
	}
	return bundle, true, nil
}

// Put stores the bundle under key with the configured TTL.
func (r *Redis) Put(ctx context.Context, key string, bundle domain.Bundle) error {
	if r.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisNamespace+key, raw, r.ttl).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

// Ping verifies connectivity, for startup checks.
func (r *Redis) Ping(ctx context.Context) error {
	if r.rdb == nil {
		return errors.New("redis client not configured")
	}
	return r.rdb.Ping(ctx).Err()
}
