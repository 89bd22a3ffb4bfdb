package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogfeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ResponseCacheLookups counts response cache lookups by result (hit or miss).
	ResponseCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_response_cache_lookups_total",
		Help: "Response cache lookups by result",
	}, []string{"backend", "result"})

	// ResponseCacheClears counts full cache clears by triggering event.
	ResponseCacheClears = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_response_cache_clears_total",
		Help: "Total number of response cache clears by reason",
	}, []string{"reason"})

	// ResponseCacheStaleWrites counts renders discarded because a clear happened mid-render.
	ResponseCacheStaleWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogfeed_response_cache_stale_writes_total",
		Help: "Rendered pages dropped because the cache was cleared while rendering",
	}, []string{"backend"})

	// FeedComputeLatency records feed assembly latency by feed kind.
	FeedComputeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogfeed_feed_compute_latency_seconds",
		Help:    "Feed assembly latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveFeed records how long a feed took to assemble.
func ObserveFeed(kind string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	FeedComputeLatency.WithLabelValues(kind, outcome).Observe(time.Since(start).Seconds())
}
