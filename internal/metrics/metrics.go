// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postboard_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postboard_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postboard_db_query_duration_seconds",
			Help:    "SQLite query latency by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// LikeToggles counts toggles by outcome: liked or unliked.
	LikeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postboard_like_toggles_total",
			Help: "Like toggles by resulting state",
		},
		[]string{"result"},
	)

	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postboard_posts_created_total",
			Help: "Posts created",
		},
	)

	// WeatherRequests counts upstream calls by outcome: success, failure or rejected.
	WeatherRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postboard_weather_upstream_requests_total",
			Help: "Open-Meteo requests by outcome",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "postboard_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postboard_sessions_expired_total",
			Help: "Expired sessions removed by the janitor",
		},
	)
)

// ObserveQuery returns a func that records the elapsed time for op.
//
//	defer metrics.ObserveQuery("list_posts")()
func ObserveQuery(op string) func() {
	start := time.Now()
	return func() {
		DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
