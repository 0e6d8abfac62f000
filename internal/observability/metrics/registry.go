package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// RateLimitRejectedTotal counts requests refused by the per-client limiter
	RateLimitRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratelimit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// AuthFailuresTotal counts rejected credentials by reason
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of authentication failures",
		},
		[]string{"reason"}, // reason: missing, invalid_key, invalid_token
	)
)

// Ingestion metrics
var (
	// IngestRequestsTotal counts ingestions by outcome (extracted, empty, blocked)
	IngestRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_requests_total",
			Help: "Total number of article ingestions by outcome",
		},
		[]string{"outcome"},
	)

	// IngestBlockedTotal counts SSRF rejections by reason
	IngestBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_blocked_total",
			Help: "Total number of ingestions blocked by URL safety validation",
		},
		[]string{"reason"},
	)

	// IngestFailuresTotal counts benign failures by cause
	IngestFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_failures_total",
			Help: "Total number of ingestions that produced no article",
		},
		[]string{"cause"},
	)

	// IngestDuration measures end-to-end ingestion time
	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Time taken to fetch, extract and clean an article",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 25.6, 51.2},
		},
		[]string{"outcome"},
	)

	// FetchRedirects observes how many redirects a successful fetch followed
	FetchRedirects = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fetch_redirects",
			Help:    "Number of redirects followed per successful fetch",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	// FetchBodySize measures fetched HTML size in bytes
	FetchBodySize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "fetch_body_size_bytes",
			Help: "Fetched HTML document size in bytes",
			Buckets: []float64{
				1024, 4096, 16384, 65536, 262144,
				1048576, 4194304, 10485760, // up to 10MB
			},
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
