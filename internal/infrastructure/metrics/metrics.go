package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policylens",
			Subsystem: "chat_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "policylens",
			Subsystem: "chat_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Upstream analysis engine calls
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policylens",
			Subsystem: "chat_api",
			Name:      "upstream_calls_total",
			Help:      "Total analysis engine calls",
		},
		[]string{"operation", "status"},
	)

	// Cache hit/miss counters for lazy-loaded artifacts
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policylens",
			Subsystem: "chat_api",
			Name:      "cache_lookups_total",
			Help:      "Logo and meta-summary cache lookups",
		},
		[]string{"cache", "result"},
	)

	// Queue depth gauge
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "policylens",
			Subsystem: "chat_api",
			Name:      "queue_depth",
			Help:      "Ingest task queue depth",
		},
	)

	// Background jobs counter
	BackgroundJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policylens",
			Subsystem: "chat_api",
			Name:      "background_jobs_total",
			Help:      "Total background jobs processed",
		},
		[]string{"job_type", "status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpstreamCall records an analysis engine call
func RecordUpstreamCall(operation, status string) {
	UpstreamCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(cache, result string) {
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// SetQueueDepth sets the current queue depth
func SetQueueDepth(depth int64) {
	QueueDepth.Set(float64(depth))
}

// RecordBackgroundJob records a background job execution
func RecordBackgroundJob(jobType, status string) {
	BackgroundJobsTotal.WithLabelValues(jobType, status).Inc()
}
