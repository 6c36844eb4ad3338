// Package feed defines the dashboard data source and provides the synthetic
// implementation that stands in for a real sentiment feed.
package feed

import (
	"context"
	"time"

	"sentiboard/internal/domain"
)

// Feed produces the four dashboard artifacts for a ticker and date range.
type Feed interface {
	// Generate returns the artifact bundle for the inclusive date range.
	// A non-positive day span yields an empty bundle, not an error.
	Generate(ctx context.Context, ticker string, start, end time.Time) (domain.Bundle, error)
}
