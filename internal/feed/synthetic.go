package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"sentiboard/internal/domain"
)

// Compile-time interface check.
var _ Feed = (*Synthetic)(nil)

// Sampling parameters for the synthetic artifacts.
const (
	positiveMin = 0.1
	positiveMax = 0.7
	negativeMin = 0.05
	negativeMax = 0.4
	neutralMin  = 0.1
	neutralMax  = 0.5

	startPriceMin = 100.0
	startPriceMax = 500.0
	priceStdev    = 5.0

	frequencyMin = 50
	frequencyMax = 500

	maxPosts = 5
)

// postCatalog holds the post templates. %s interpolates the selected
// ticker; templates without it survive only on the keep probability.
var postCatalog = []string{
	"%s is showing strong momentum this week!",
	"Just added more %s to my portfolio, feeling bullish.",
	"Market breadth looks weak, keeping some cash on the side.",
	"%s earnings call exceeded expectations across the board.",
	"Thinking about trimming positions before the Fed meeting.",
	"Analysts raised their price target on %s again today.",
	"Volume is thin this morning, staying on the sidelines.",
	"%s chatter is all over my feed right now.",
	"Options flow is hinting at a volatile week ahead.",
	"Retail interest keeps climbing across the sector.",
}

// Synthetic generates random dashboard artifacts in place of a real
// sentiment feed. Values are drawn fresh on every call; the memoization
// cache upstream is what pins a draw to a given input.
type Synthetic struct {
	universe []string
	keepProb float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic creates a Synthetic feed. A non-zero seed makes the feed
// reproducible; seed zero draws a fresh seed per process. universe is the
// fixed ticker set for the mention-frequency table, and keepProb the chance
// that a catalog post without a ticker mention survives selection.
func NewSynthetic(seed uint64, keepProb float64, universe []string) *Synthetic {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Synthetic{
		universe: append([]string(nil), universe...),
		keepProb: keepProb,
		rng:      rand.New(rand.NewPCG(seed, seed)),
	}
}

// Generate returns the artifact bundle for the inclusive date range.
func (f *Synthetic) Generate(ctx context.Context, ticker string, start, end time.Time) (domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bundle{}, err
	}

	days := domain.DayCount(start, end)
	if days <= 0 {
		return domain.Bundle{}, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return domain.Bundle{
		Sentiment:   f.sentimentSeries(start, days),
		Prices:      f.priceSeries(start, days),
		Posts:       selectPosts(f.rng, renderCatalog(ticker), ticker, f.keepProb),
		Frequencies: f.frequencies(),
	}, nil
}

// sentimentSeries samples one point per day from the fixed uniform ranges.
// Overall is positive minus negative, clamped to [-1, 1].
func (f *Synthetic) sentimentSeries(start time.Time, days int) []domain.SentimentPoint {
	points := make([]domain.SentimentPoint, days)
	for i := range points {
		pos := f.uniform(positiveMin, positiveMax)
		neg := f.uniform(negativeMin, negativeMax)
		neu := f.uniform(neutralMin, neutralMax)
		points[i] = domain.SentimentPoint{
			Date:     start.AddDate(0, 0, i),
			Positive: pos,
			Negative: neg,
			Neutral:  neu,
			Overall:  domain.ClampScore(pos - neg),
		}
	}
	return points
}

// priceSeries is a random walk: a uniform initial price in
// [startPriceMin, startPriceMax) plus one N(0, priceStdev) delta per day.
// Nothing stops it going negative over long ranges.
func (f *Synthetic) priceSeries(start time.Time, days int) []domain.PricePoint {
	points := make([]domain.PricePoint, days)
	price := f.uniform(startPriceMin, startPriceMax)
	for i := range points {
		price += f.rng.NormFloat64() * priceStdev
		points[i] = domain.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Price: price,
		}
	}
	return points
}

// frequencies samples one uniform mention count per universe ticker and
// sorts descending by count, ties broken by ticker for stable output.
func (f *Synthetic) frequencies() []domain.TickerCount {
	counts := make([]domain.TickerCount, len(f.universe))
	for i, sym := range f.universe {
		counts[i] = domain.TickerCount{
			Ticker: sym,
			Count:  frequencyMin + f.rng.IntN(frequencyMax-frequencyMin),
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Ticker < counts[j].Ticker
	})
	return counts
}

func (f *Synthetic) uniform(lo, hi float64) float64 {
	return lo + f.rng.Float64()*(hi-lo)
}

// renderCatalog interpolates the ticker into the post templates.
func renderCatalog(ticker string) []string {
	posts := make([]string, len(postCatalog))
	for i, tmpl := range postCatalog {
		if strings.Contains(tmpl, "%s") {
			posts[i] = fmt.Sprintf(tmpl, ticker)
		} else {
			posts[i] = tmpl
		}
	}
	return posts
}

// selectPosts keeps a post when it mentions the ticker case-insensitively
// or an independent coin flip with probability keepProb passes, and returns
// the first maxPosts survivors in catalog order. When nothing survives, a
// single placeholder post is returned instead.
func selectPosts(rng *rand.Rand, posts []string, ticker string, keepProb float64) []string {
	needle := strings.ToLower(ticker)
	kept := make([]string, 0, maxPosts)
	for _, post := range posts {
		if !strings.Contains(strings.ToLower(post), needle) && rng.Float64() >= keepProb {
			continue
		}
		kept = append(kept, post)
		if len(kept) == maxPosts {
			break
		}
	}
	if len(kept) == 0 {
		return []string{fmt.Sprintf("No recent posts found for %s.", ticker)}
	}
	return kept
}
