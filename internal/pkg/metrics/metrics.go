package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "technohack_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "technohack_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "technohack_cache_hits_total",
			Help: "Read cache hits by key family",
		},
		[]string{"family"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "technohack_cache_misses_total",
			Help: "Read cache misses by key family",
		},
		[]string{"family"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "technohack_cache_errors_total",
			Help: "Read cache backend failures by operation",
		},
		[]string{"operation"},
	)

	AnnouncementsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "technohack_announcements_archived_total",
			Help: "Announcements moved to archived by the expiry sweep",
		},
	)

	ImageCleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "technohack_image_cleanup_failures_total",
			Help: "Stored images that could not be removed",
		},
		[]string{"entity"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "technohack_rate_limited_requests_total",
			Help: "Requests rejected by the per-IP limiter",
		},
	)
)

// RecordHttpRequest records one served request.
func RecordHttpRequest(method, endpoint, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
