// Package httpapi serves the sentiment dashboard HTTP API and the
// embedded single-page UI.
package httpapi

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"sentiboard/internal/domain"
	"sentiboard/internal/export"
	"sentiboard/internal/metrics"
	"sentiboard/internal/pipeline"
)

//go:embed web/index.html
var indexHTML string

// Server serves the dashboard HTTP API.
type Server struct {
	runner  *pipeline.Runner
	tickers []string
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewServer creates a new dashboard HTTP server. The tickers list is what
// the UI offers for selection; rps and burst bound the request rate across
// the API routes, with rps <= 0 disabling the limiter.
func NewServer(runner *pipeline.Runner, tickers []string, rps float64, burst int, log *slog.Logger) *Server {
	s := &Server{
		runner:  runner,
		tickers: tickers,
		log:     log,
	}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return s
}

// RegisterRoutes registers all routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/tickers", s.api("/api/tickers", s.handleTickers))
	mux.HandleFunc("GET /api/dashboard", s.api("/api/dashboard", s.handleDashboard))
	mux.HandleFunc("GET /api/export", s.api("/api/export", s.handleExport))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

// api wraps an API handler with the rate limiter and request metrics.
func (s *Server) api(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			metrics.RecordHTTPRequest(route, http.StatusTooManyRequests)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.RecordHTTPRequest(route, rec.status)
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parseQuery extracts a dashboard query from request parameters. The band
// defaults to the full [-1, 1] range when low and high are absent.
func parseQuery(r *http.Request) (domain.Query, error) {
	params := r.URL.Query()

	q := domain.Query{
		Ticker: params.Get("ticker"),
		Low:    -1,
		High:   1,
	}

	var err error
	if q.Start, err = domain.ParseDate(params.Get("start")); err != nil {
		return domain.Query{}, fmt.Errorf("invalid start date %q: use %s", params.Get("start"), domain.DateFormat)
	}
	if q.End, err = domain.ParseDate(params.Get("end")); err != nil {
		return domain.Query{}, fmt.Errorf("invalid end date %q: use %s", params.Get("end"), domain.DateFormat)
	}

	if v := params.Get("low"); v != "" {
		if q.Low, err = strconv.ParseFloat(v, 64); err != nil {
			return domain.Query{}, fmt.Errorf("invalid low bound %q", v)
		}
	}
	if v := params.Get("high"); v != "" {
		if q.High, err = strconv.ParseFloat(v, 64); err != nil {
			return domain.Query{}, fmt.Errorf("invalid high bound %q", v)
		}
	}
	return q, nil
}

// run executes the pipeline for a request, writing the error response on
// failure. Validation failures map to 400, everything else to 500.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (pipeline.Result, bool) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return pipeline.Result{}, false
	}

	res, err := s.runner.Run(r.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyTicker),
			errors.Is(err, domain.ErrInvalidRange),
			errors.Is(err, domain.ErrInvalidBand):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Error("dashboard query failed", "error", err)
			writeError(w, http.StatusInternalServerError, "dashboard query failed")
		}
		return pipeline.Result{}, false
	}
	return res, true
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleTickers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, TickersResponse{Tickers: s.tickers})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	writeJSON(w, convertResult(res))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatParquet {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export format %q", format))
		return
	}

	res, ok := s.run(w, r)
	if !ok {
		return
	}

	name := export.Filename(res.Query.Ticker, res.Query.Start, res.Query.End, format)
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.Write(w, format, res.Sentiment); err != nil {
		// Headers are already out; all we can do is log.
		s.log.Error("writing export", "format", format, "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}
