// Package domain defines the core data types shared across sentiboard
// components: validated queries, generated artifacts, and analysis results.
package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateFormat is the calendar-date form used on the wire and in filenames.
const DateFormat = "2006-01-02"

// Validation errors. Handlers match these with errors.Is to pick a
// response code.
var (
	ErrEmptyTicker  = errors.New("ticker must not be empty")
	ErrInvalidRange = errors.New("start date is after end date")
	ErrInvalidBand  = errors.New("sentiment band low exceeds high")
)

// SentimentPoint is one day of synthetic sentiment scores.
// Overall is clamped to [-1, 1] at generation time.
type SentimentPoint struct {
	Date     time.Time `json:"date"`
	Positive float64   `json:"positive"`
	Negative float64   `json:"negative"`
	Neutral  float64   `json:"neutral"`
	Overall  float64   `json:"overall"`
}

// PricePoint is one day of the synthetic price walk. Nothing bounds the
// price; it can go negative over long ranges.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// TickerCount is one row of the mention-frequency table.
type TickerCount struct {
	Ticker string `json:"ticker"`
	Count  int    `json:"count"`
}

// Bundle holds the four artifacts generated for one (start, end, ticker)
// input. It is the unit the memoization cache stores; the sentiment band
// is applied on top of it per request.
type Bundle struct {
	Sentiment   []SentimentPoint `json:"sentiment"`
	Prices      []PricePoint     `json:"prices"`
	Posts       []string         `json:"posts"`
	Frequencies []TickerCount    `json:"frequencies"`
}

// JoinedPoint pairs one day's overall sentiment with its price.
type JoinedPoint struct {
	Date    time.Time `json:"date"`
	Overall float64   `json:"overall"`
	Price   float64   `json:"price"`
}

// Correlation is a Pearson coefficient with an explicit undefined state.
// Fewer than two joined rows, or a constant series, leaves it undefined;
// the zero value reports that rather than NaN. A defined zero coefficient
// is a legitimate result.
type Correlation struct {
	Defined bool    `json:"defined"`
	Value   float64 `json:"value"`
}

// Trend is a least-squares line fitted to price against overall sentiment.
// It is undefined with fewer than two joined rows or constant sentiment.
type Trend struct {
	Defined   bool    `json:"defined"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Query is a dashboard request passed by value through the pipeline.
// Dates are UTC midnight; the band is a closed interval on Overall.
type Query struct {
	Ticker string
	Start  time.Time
	End    time.Time
	Low    float64
	High   float64
}

// Normalize returns the query with the ticker trimmed and uppercased and
// the band bounds clamped into [-1, 1]. Out-of-range bounds are not an
// error; they are pulled to the nearest valid value.
func (q Query) Normalize() Query {
	q.Ticker = strings.ToUpper(strings.TrimSpace(q.Ticker))
	q.Low = ClampScore(q.Low)
	q.High = ClampScore(q.High)
	return q
}

// Validate reports whether the query can be executed. It is called on the
// normalized form; any error halts the pipeline before generation. The band
// must satisfy Low <= High, which no NaN bound can.
func (q Query) Validate() error {
	if q.Ticker == "" {
		return ErrEmptyTicker
	}
	if q.Start.After(q.End) {
		return ErrInvalidRange
	}
	// NaN compares false against everything, so test it separately.
	if math.IsNaN(q.Low) || math.IsNaN(q.High) || q.Low > q.High {
		return ErrInvalidBand
	}
	return nil
}

// ClampScore bounds v to the overall-sentiment range [-1, 1].
func ClampScore(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseDate parses a calendar date in DateFormat at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// FormatDate renders a date in DateFormat.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// DayCount returns the inclusive day span between start and end, so a
// single-day range counts as 1. A reversed range counts as 0.
func DayCount(start, end time.Time) int {
	start = midnight(start)
	end = midnight(end)
	if start.After(end) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
