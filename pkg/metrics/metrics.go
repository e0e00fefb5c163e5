package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Registry holds every collector of this module. The stub API serves it on /metrics.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	// Custom histogram buckets for remote API round trips, from milliseconds to tens of seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// Remote API client metrics
	APIRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_client_request_duration_seconds",
			Help:    "Remote API call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	APIRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_client_request_total",
			Help: "Total number of remote API calls",
		},
		[]string{"operation", "status"},
	)

	// Session lifecycle
	SessionEvents = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobarber_session_events_total",
			Help: "Session lifecycle events by kind and outcome",
		},
		[]string{"event", "outcome"},
	)

	// Availability fetches by outcome: applied, stale, error
	AvailabilityFetches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobarber_availability_fetches_total",
			Help: "Day availability fetches by outcome",
		},
		[]string{"outcome"},
	)

	// Booking submissions by outcome: confirmed, failed, duplicate
	BookingSubmissions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobarber_booking_submissions_total",
			Help: "Booking submissions by outcome",
		},
		[]string{"outcome"},
	)

	// Cache Metrics
	CacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// HTTP server metrics (stub API)
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
