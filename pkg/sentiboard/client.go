// Package sentiboard provides a Go client for the sentiboard-server API.
package sentiboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to a running sentiboard-server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client for the given base URL, for example
// "http://localhost:8090".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// DashboardRequest names the parameters of a dashboard query. Dates use
// the 2006-01-02 form; Low and High bound the overall-sentiment band.
type DashboardRequest struct {
	Ticker string
	Start  string
	End    string
	Low    float64
	High   float64
}

// NewDashboardRequest returns a request over the full sentiment band.
func NewDashboardRequest(ticker, start, end string) DashboardRequest {
	return DashboardRequest{Ticker: ticker, Start: start, End: end, Low: -1, High: 1}
}

func (r DashboardRequest) values() url.Values {
	v := url.Values{}
	v.Set("ticker", r.Ticker)
	v.Set("start", r.Start)
	v.Set("end", r.End)
	v.Set("low", strconv.FormatFloat(r.Low, 'f', -1, 64))
	v.Set("high", strconv.FormatFloat(r.High, 'f', -1, 64))
	return v
}

// Sentiment is one day of sentiment scores.
type Sentiment struct {
	Date     string  `json:"date"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Overall  float64 `json:"overall"`
}

// Price is one day of the simulated price walk.
type Price struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// Frequency is one row of the mention-frequency table.
type Frequency struct {
	Ticker string `json:"ticker"`
	Count  int    `json:"count"`
}

// Joined pairs one day's overall sentiment with its price.
type Joined struct {
	Date    string  `json:"date"`
	Overall float64 `json:"overall"`
	Price   float64 `json:"price"`
}

// Correlation reports the Pearson coefficient; Value is nil when it is
// undefined.
type Correlation struct {
	Defined bool     `json:"defined"`
	Value   *float64 `json:"value,omitempty"`
}

// Trend reports the fitted price-versus-sentiment line; Slope and
// Intercept are nil when the fit is undefined.
type Trend struct {
	Defined   bool     `json:"defined"`
	Slope     *float64 `json:"slope,omitempty"`
	Intercept *float64 `json:"intercept,omitempty"`
}

// Meta describes how the server produced a result.
type Meta struct {
	CacheHit  bool    `json:"cacheHit"`
	Days      int     `json:"days"`
	ElapsedMs float64 `json:"elapsedMs"`
}

// Dashboard is the full dashboard payload.
type Dashboard struct {
	Ticker      string      `json:"ticker"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	Low         float64     `json:"low"`
	High        float64     `json:"high"`
	Sentiment   []Sentiment `json:"sentiment"`
	Prices      []Price     `json:"prices"`
	Posts       []string    `json:"posts"`
	Frequencies []Frequency `json:"frequencies"`
	Joined      []Joined    `json:"joined"`
	Correlation Correlation `json:"correlation"`
	Trend       Trend       `json:"trend"`
	Meta        Meta        `json:"meta"`
}

// Dashboard fetches the full dashboard payload for a query.
func (c *Client) Dashboard(ctx context.Context, req DashboardRequest) (*Dashboard, error) {
	resp, err := c.get(ctx, "/api/dashboard", req.values())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var d Dashboard
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding dashboard response: %w", err)
	}
	return &d, nil
}

// Tickers lists the tickers the server offers for selection.
func (c *Client) Tickers(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, "/api/tickers", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Tickers []string `json:"tickers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding tickers response: %w", err)
	}
	return body.Tickers, nil
}

// ExportCSV downloads the CSV artifact for a query, returning the file
// contents and the server-assigned filename.
func (c *Client) ExportCSV(ctx context.Context, req DashboardRequest) ([]byte, string, error) {
	v := req.values()
	v.Set("format", "csv")
	resp, err := c.get(ctx, "/api/export", v)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading export body: %w", err)
	}

	name := ""
	if disp := resp.Header.Get("Content-Disposition"); disp != "" {
		if _, params, err := mime.ParseMediaType(disp); err == nil {
			name = params["filename"]
		}
	}
	return data, name, nil
}

// Health probes the server, returning nil when it reports ok.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("server reports status %q", body.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return resp, nil
}

// apiError extracts the server's error message from a non-200 response.
func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
