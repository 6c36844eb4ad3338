// Package metrics exposes Prometheus instrumentation for the dashboard
// pipeline and HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		},
		[]string{"route", "status"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_cache_lookups_total",
			Help: "Bundle cache lookups, by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	generateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiboard_generate_duration_seconds",
			Help:    "Time spent generating one artifact bundle.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, cacheLookups, generateDuration)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// RecordCacheLookup counts one cache lookup outcome: "hit", "miss", or
// "error".
func RecordCacheLookup(backend, outcome string) {
	cacheLookups.WithLabelValues(backend, outcome).Inc()
}

// ObserveGenerateDuration records how long one bundle generation took.
func ObserveGenerateDuration(d time.Duration) {
	generateDuration.Observe(d.Seconds())
}
