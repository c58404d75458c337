// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the strom streaming service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// StreamBuckets defines histogram buckets for stream lifetimes, ranging
// from 10ms for rejected requests to one hour for long metrics streams.
var StreamBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600}

// Stream outcomes used as the "outcome" label.
const (
	OutcomeCompleted        = "completed"
	OutcomeClientDisconnect = "client_disconnect"
	OutcomeProducerError    = "producer_error"
	OutcomeMaxDuration      = "max_duration"
	OutcomeCancelled        = "cancelled"
)

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strom_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strom_request_duration_seconds",
			Help:    "Request duration",
			Buckets: StreamBuckets,
		},
		[]string{"method", "route"},
	)

	// ActiveStreams tracks the number of stream sessions currently writing.
	ActiveStreams = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strom_streams_active",
			Help: "Active stream sessions",
		},
		[]string{"kind"},
	)

	// StreamsTotal counts finished stream sessions by kind and outcome.
	StreamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strom_streams_total",
			Help: "Finished stream sessions",
		},
		[]string{"kind", "outcome"},
	)

	// StreamDuration records how long stream sessions stayed open.
	StreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strom_stream_duration_seconds",
			Help:    "Stream session duration",
			Buckets: StreamBuckets,
		},
		[]string{"kind"},
	)

	// StreamChunksTotal counts chunks delivered to clients.
	StreamChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strom_stream_chunks_total",
			Help: "Chunks written",
		},
		[]string{"kind"},
	)

	// StreamBytesTotal counts payload bytes delivered to clients.
	StreamBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strom_stream_bytes_total",
			Help: "Bytes written",
		},
		[]string{"kind"},
	)

	// AuthFailuresTotal counts rejected credentials by reason
	// (missing or invalid).
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strom_auth_failures_total",
			Help: "Authentication failures",
		},
		[]string{"reason"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	// The scope label is "client" for per-client quotas and "global" for
	// the server-wide throttle.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strom_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"scope"},
	)

	// RateLimitErrorsTotal counts limiter backend failures. Requests are
	// allowed through when the backend fails.
	RateLimitErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "strom_ratelimit_backend_errors_total",
			Help: "Rate limiter backend errors",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ActiveStreams,
		StreamsTotal,
		StreamDuration,
		StreamChunksTotal,
		StreamBytesTotal,
		AuthFailuresTotal,
		RateLimitRejectedTotal,
		RateLimitErrorsTotal,
	)
}
