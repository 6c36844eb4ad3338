// Package pipeline runs the dashboard computation: validate the query,
// resolve the artifact bundle through the cache, apply the sentiment band,
// and derive the joined series with its correlation and trend line.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"sentiboard/internal/analysis"
	"sentiboard/internal/cache"
	"sentiboard/internal/domain"
	"sentiboard/internal/feed"
	"sentiboard/internal/metrics"
)

// Meta describes how a result was produced.
type Meta struct {
	CacheHit bool
	Days     int
	Elapsed  time.Duration
}

// Result is everything one dashboard render needs. Sentiment holds the
// band-filtered view; Prices, Posts, and Frequencies are unfiltered.
type Result struct {
	Query       domain.Query
	Sentiment   []domain.SentimentPoint
	Prices      []domain.PricePoint
	Posts       []string
	Frequencies []domain.TickerCount
	Joined      []domain.JoinedPoint
	Correlation domain.Correlation
	Trend       domain.Trend
	Meta        Meta
}

// Runner executes dashboard queries against a feed with a cache in front.
type Runner struct {
	feed    feed.Feed
	store   cache.Store
	backend string
	log     *slog.Logger
}

// NewRunner wires a Runner. The backend name labels cache metrics.
func NewRunner(f feed.Feed, store cache.Store, backend string, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{feed: f, store: store, backend: backend, log: log}
}

// Run normalizes and validates q, resolves the artifact bundle, and
// computes the filtered and joined views. A validation error halts the
// run before any generation happens. The bundle is cached before the band
// is applied, so one generation serves every band over the same range.
func (r *Runner) Run(ctx context.Context, q domain.Query) (Result, error) {
	began := time.Now()

	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	key := cache.Key(q.Ticker, q.Start, q.End)
	bundle, hit := r.lookup(ctx, key)
	if !hit {
		genStart := time.Now()
		b, err := r.feed.Generate(ctx, q.Ticker, q.Start, q.End)
		metrics.ObserveGenerateDuration(time.Since(genStart))
		if err != nil {
			return Result{}, err
		}
		bundle = b
		if err := r.store.Put(ctx, key, bundle); err != nil {
			r.log.Warn("cache put failed", "backend", r.backend, "key", key, "error", err)
		}
	}

	filtered := analysis.FilterByScore(bundle.Sentiment, q.Low, q.High)
	joined := analysis.JoinByDate(filtered, bundle.Prices)

	res := Result{
		Query:       q,
		Sentiment:   filtered,
		Prices:      bundle.Prices,
		Posts:       bundle.Posts,
		Frequencies: bundle.Frequencies,
		Joined:      joined,
		Correlation: analysis.Pearson(joined),
		Trend:       analysis.FitTrend(joined),
		Meta: Meta{
			CacheHit: hit,
			Days:     domain.DayCount(q.Start, q.End),
			Elapsed:  time.Since(began),
		},
	}
	r.log.Debug("dashboard query served",
		"ticker", q.Ticker,
		"days", res.Meta.Days,
		"cache_hit", hit,
		"joined", len(joined),
		"elapsed", res.Meta.Elapsed)
	return res, nil
}

// lookup consults the cache, degrading backend errors to a miss.
func (r *Runner) lookup(ctx context.Context, key string) (domain.Bundle, bool) {
	b, ok, err := r.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheLookup(r.backend, "error")
		r.log.Warn("cache get failed", "backend", r.backend, "key", key, "error", err)
		return domain.Bundle{}, false
	case ok:
		metrics.RecordCacheLookup(r.backend, "hit")
		return b, true
	default:
		metrics.RecordCacheLookup(r.backend, "miss")
		return domain.Bundle{}, false
	}
}
