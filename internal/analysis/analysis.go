// Package analysis implements the filter, join, and statistics stages of
// the dashboard pipeline.
package analysis

import (
	"math"
	"sort"

	"sentiboard/internal/domain"
)

// FilterByScore retains the sentiment points whose overall score lies in
// the closed interval [lo, hi]. Input order is preserved, so filtering an
// already-filtered slice with the same bounds returns the same slice.
func FilterByScore(points []domain.SentimentPoint, lo, hi float64) []domain.SentimentPoint {
	out := make([]domain.SentimentPoint, 0, len(points))
	for _, p := range points {
		if p.Overall >= lo && p.Overall <= hi {
			out = append(out, p)
		}
	}
	return out
}

// JoinByDate inner-joins sentiment with price on exact calendar date. Rows
// without a partner on the other side are dropped, so the joined dates are
// the intersection of the two inputs. The result is ordered by date.
func JoinByDate(sentiment []domain.SentimentPoint, prices []domain.PricePoint) []domain.JoinedPoint {
	byDate := make(map[string]float64, len(prices))
	for _, p := range prices {
		byDate[domain.FormatDate(p.Date)] = p.Price
	}

	joined := make([]domain.JoinedPoint, 0, len(sentiment))
	for _, s := range sentiment {
		price, ok := byDate[domain.FormatDate(s.Date)]
		if !ok {
			continue
		}
		joined = append(joined, domain.JoinedPoint{
			Date:    s.Date,
			Overall: s.Overall,
			Price:   price,
		})
	}

	sort.Slice(joined, func(i, j int) bool {
		return joined[i].Date.Before(joined[j].Date)
	})
	return joined
}

// Pearson computes the correlation between overall sentiment and price
// over the joined rows. With fewer than two rows, or when either series is
// constant, the coefficient is undefined and reported as such.
func Pearson(joined []domain.JoinedPoint) domain.Correlation {
	if len(joined) < 2 {
		return domain.Correlation{}
	}
	_, _, varX, varY, covXY := moments(joined)
	if varX == 0 || varY == 0 {
		return domain.Correlation{}
	}
	return domain.Correlation{
		Defined: true,
		Value:   covXY / math.Sqrt(varX*varY),
	}
}

// FitTrend fits the least-squares line price = Slope*overall + Intercept
// for the scatter overlay. The fit is undefined with fewer than two rows
// or when the sentiment series is constant; a constant price series still
// yields a flat line.
func FitTrend(joined []domain.JoinedPoint) domain.Trend {
	if len(joined) < 2 {
		return domain.Trend{}
	}
	meanX, meanY, varX, _, covXY := moments(joined)
	if varX == 0 {
		return domain.Trend{}
	}
	slope := covXY / varX
	return domain.Trend{
		Defined:   true,
		Slope:     slope,
		Intercept: meanY - slope*meanX,
	}
}

// moments returns the means, variances (times n), and covariance (times n)
// of overall sentiment (x) and price (y) over the joined rows.
func moments(joined []domain.JoinedPoint) (meanX, meanY, varX, varY, covXY float64) {
	n := float64(len(joined))
	for _, j := range joined {
		meanX += j.Overall
		meanY += j.Price
	}
	meanX /= n
	meanY /= n

	for _, j := range joined {
		dx := j.Overall - meanX
		dy := j.Price - meanY
		varX += dx * dx
		varY += dy * dy
		covXY += dx * dy
	}
	return meanX, meanY, varX, varY, covXY
}
