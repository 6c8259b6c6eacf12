package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter: how many times a generation was served from cache.
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promptswitcher_cache_hits_total",
			Help: "Total number of idea cache hits.",
		},
	)

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promptswitcher_cache_misses_total",
			Help: "Total number of idea cache misses.",
		},
	)

	// Counter: upstream provider calls by outcome
	// (ok | upstream_error | no_text | invalid_json | malformed).
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptswitcher_upstream_requests_total",
			Help: "Total number of upstream generation calls by outcome.",
		},
		[]string{"outcome"},
	)

	UpstreamLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptswitcher_upstream_latency_seconds",
			Help:    "Latency of upstream generation calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)

	// Histogram: HTTP latency in seconds.
	HTTPLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptswitcher_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"path", "method", "status_code"},
	)
)

var registerOnce sync.Once

// Register is called once in main() to register metrics.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CacheHitsTotal,
			CacheMissesTotal,
			UpstreamRequestsTotal,
			UpstreamLatencySeconds,
			HTTPLatencySeconds,
		)
	})
}

// ObserveUpstream records one upstream call.
func ObserveUpstream(outcome string, d time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(outcome).Inc()
	UpstreamLatencySeconds.Observe(d.Seconds())
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures latency for each HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		// label by route pattern; unmatched paths share one label
		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		HTTPLatencySeconds.
			WithLabelValues(path, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
