package httpapi

import (
	"sentiboard/internal/domain"
	"sentiboard/internal/pipeline"
)

// SentimentJSON is one day of sentiment scores with the date in wire form.
type SentimentJSON struct {
	Date     string  `json:"date"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Overall  float64 `json:"overall"`
}

// PriceJSON is one day of the price walk.
type PriceJSON struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// FrequencyJSON is one row of the mention-frequency table.
type FrequencyJSON struct {
	Ticker string `json:"ticker"`
	Count  int    `json:"count"`
}

// JoinedJSON pairs one day's overall sentiment with its price.
type JoinedJSON struct {
	Date    string  `json:"date"`
	Overall float64 `json:"overall"`
	Price   float64 `json:"price"`
}

// CorrelationJSON reports the Pearson coefficient. Value is omitted when
// the coefficient is undefined.
type CorrelationJSON struct {
	Defined bool     `json:"defined"`
	Value   *float64 `json:"value,omitempty"`
}

// TrendJSON reports the fitted price-versus-sentiment line. Slope and
// intercept are omitted when the fit is undefined.
type TrendJSON struct {
	Defined   bool     `json:"defined"`
	Slope     *float64 `json:"slope,omitempty"`
	Intercept *float64 `json:"intercept,omitempty"`
}

// MetaJSON describes how the result was produced.
type MetaJSON struct {
	CacheHit  bool    `json:"cacheHit"`
	Days      int     `json:"days"`
	ElapsedMs float64 `json:"elapsedMs"`
}

// DashboardResponse is the top-level JSON response for the dashboard
// endpoint. Sentiment holds the band-filtered view; prices, posts, and
// frequencies are unfiltered.
type DashboardResponse struct {
	Ticker      string          `json:"ticker"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Low         float64         `json:"low"`
	High        float64         `json:"high"`
	Sentiment   []SentimentJSON `json:"sentiment"`
	Prices      []PriceJSON     `json:"prices"`
	Posts       []string        `json:"posts"`
	Frequencies []FrequencyJSON `json:"frequencies"`
	Joined      []JoinedJSON    `json:"joined"`
	Correlation CorrelationJSON `json:"correlation"`
	Trend       TrendJSON       `json:"trend"`
	Meta        MetaJSON        `json:"meta"`
}

// TickersResponse lists the tickers offered for selection.
type TickersResponse struct {
	Tickers []string `json:"tickers"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status string `json:"status"`
}

func convertSentiment(points []domain.SentimentPoint) []SentimentJSON {
	out := make([]SentimentJSON, 0, len(points))
	for _, p := range points {
		out = append(out, SentimentJSON{
			Date:     domain.FormatDate(p.Date),
			Positive: p.Positive,
			Negative: p.Negative,
			Neutral:  p.Neutral,
			Overall:  p.Overall,
		})
	}
	return out
}

func convertPrices(points []domain.PricePoint) []PriceJSON {
	out := make([]PriceJSON, 0, len(points))
	for _, p := range points {
		out = append(out, PriceJSON{Date: domain.FormatDate(p.Date), Price: p.Price})
	}
	return out
}

func convertFrequencies(rows []domain.TickerCount) []FrequencyJSON {
	out := make([]FrequencyJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, FrequencyJSON{Ticker: r.Ticker, Count: r.Count})
	}
	return out
}

func convertJoined(points []domain.JoinedPoint) []JoinedJSON {
	out := make([]JoinedJSON, 0, len(points))
	for _, p := range points {
		out = append(out, JoinedJSON{
			Date:    domain.FormatDate(p.Date),
			Overall: p.Overall,
			Price:   p.Price,
		})
	}
	return out
}

func convertCorrelation(c domain.Correlation) CorrelationJSON {
	out := CorrelationJSON{Defined: c.Defined}
	if c.Defined {
		v := c.Value
		out.Value = &v
	}
	return out
}

func convertTrend(t domain.Trend) TrendJSON {
	out := TrendJSON{Defined: t.Defined}
	if t.Defined {
		slope, intercept := t.Slope, t.Intercept
		out.Slope = &slope
		out.Intercept = &intercept
	}
	return out
}

// convertResult converts a pipeline result to its JSON form. Nil slices
// become empty arrays so the UI never sees null.
func convertResult(res pipeline.Result) DashboardResponse {
	posts := res.Posts
	if posts == nil {
		posts = []string{}
	}
	return DashboardResponse{
		Ticker:      res.Query.Ticker,
		Start:       domain.FormatDate(res.Query.Start),
		End:         domain.FormatDate(res.Query.End),
		Low:         res.Query.Low,
		High:        res.Query.High,
		Sentiment:   convertSentiment(res.Sentiment),
		Prices:      convertPrices(res.Prices),
		Posts:       posts,
		Frequencies: convertFrequencies(res.Frequencies),
		Joined:      convertJoined(res.Joined),
		Correlation: convertCorrelation(res.Correlation),
		Trend:       convertTrend(res.Trend),
		Meta: MetaJSON{
			CacheHit:  res.Meta.CacheHit,
			Days:      res.Meta.Days,
			ElapsedMs: float64(res.Meta.Elapsed.Microseconds()) / 1000.0,
		},
	}
}
