// Package metrics provides Prometheus instrumentation for the
// tournament engine. Metrics are registered via promauto at package
// init time and exposed at GET /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FixturesGenerated counts round-one fixtures created by the generator,
// byes included.
var FixturesGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tournament_fixtures_generated_total",
	Help: "Fixtures created during bracket generation.",
})

// FixturesCompleted counts fixtures that received a winner.
var FixturesCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tournament_fixtures_completed_total",
	Help: "Fixtures completed with a winner.",
})

// TournamentsCompleted counts tournaments whose last fixture finished.
var TournamentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tournament_completed_total",
	Help: "Tournaments that reached completed status.",
})

// ScoreEvents counts in-match events by type (Goal, YellowCard, RedCard).
var ScoreEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tournament_score_events_total",
	Help: "Logged in-match score events by type.",
}, []string{"type"})

// LiveClients is the number of connected live-stream websocket clients.
var LiveClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "tournament_live_clients",
	Help: "Connected live fixture stream clients.",
})

// HTTPRequests counts HTTP requests by method, path and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tournament_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "path", "status"})

// HTTPDuration tracks HTTP request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "tournament_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path"})

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency for every handler it
// wraps.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if len(path) > 64 {
			path = path[:64]
		}
		HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
