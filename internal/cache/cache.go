// Package cache memoizes generated artifact bundles by their input, so
// repeated requests for the same ticker and date range observe one frozen
// random draw. Backends: in-process LRU, SQLite, and redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"sentiboard/internal/config"
	"sentiboard/internal/domain"
)

// Store is a content-addressed cache for generated bundles.
type Store interface {
	// Get returns the bundle stored under key, reporting whether it was
	// present. Backend failures surface as errors, not misses; callers
	// decide how to degrade.
	Get(ctx context.Context, key string) (domain.Bundle, bool, error)

	// Put stores the bundle under key, evicting older entries as the
	// backend requires.
	Put(ctx context.Context, key string, bundle domain.Bundle) error

	// Close releases backend resources.
	Close() error
}

// Key derives the content address for a generation input: a SHA-256 over
// the date range and upper-cased ticker. The sentiment band is not part of
// the key, so every band filters the same cached draw.
func Key(ticker string, start, end time.Time) string {
	sum := sha256.Sum256([]byte(
		domain.FormatDate(start) + "|" + domain.FormatDate(end) + "|" + strings.ToUpper(ticker),
	))
	return hex.EncodeToString(sum[:])
}

// New builds the Store selected by cfg.
func New(cfg config.Cache, log *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(cfg.Capacity), nil
	case config.BackendSQLite:
		return NewSQLite(cfg.SQLitePath, cfg.Capacity)
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedis(rdb, cfg.TTL.Std(), log), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
