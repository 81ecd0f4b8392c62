package limber

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request lifecycle,
// retries, the rate gate and session churn. It is safe for concurrent use.
// A nil collector is valid and records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec

	rateLimiterWait   *prometheus.HistogramVec
	rateLimiterTokens *prometheus.GaugeVec

	sessionStarts prometheus.Counter
	sessionStops  prometheus.Counter

	errorsTotal *prometheus.CounterVec

	registerer prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer; tests pass a fresh prometheus.NewRegistry().
func NewMetricsCollectorWithRegistry(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "limber_requests_total",
				Help: "Total number of completed request sequences",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "limber_request_duration_seconds",
				Help:    "Duration of request sequences including retries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registerer).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "limber_requests_in_flight",
				Help: "Number of logical requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		retriesTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "limber_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "endpoint", "attempt"},
		),
		rateLimiterWait: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "limber_rate_limiter_wait_seconds",
				Help:    "Time spent waiting on the rate gate in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		rateLimiterTokens: promauto.With(registerer).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "limber_rate_limiter_tokens",
				Help: "Currently available rate limiter permits",
			},
			[]string{"name"},
		),
		sessionStarts: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "limber_session_starts_total",
				Help: "Total number of session starts",
			},
		),
		sessionStops: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "limber_session_stops_total",
				Help: "Total number of session stops",
			},
		),
		errorsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "limber_errors_total",
				Help: "Total number of classified attempt failures",
			},
			[]string{"kind", "method", "endpoint"},
		),
		registerer: registerer,
	}
}

// RecordRequest records the final status and duration of a request sequence.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordRetry increments the retry counter for an attempt.
func (mc *MetricsCollector) RecordRetry(method, endpoint string, attempt int) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(method, endpoint, strconv.Itoa(attempt)).Inc()
}

// RecordRateLimiterWait observes time spent blocked on the gate.
func (mc *MetricsCollector) RecordRateLimiterWait(endpoint string, wait time.Duration) {
	if mc == nil {
		return
	}

	mc.rateLimiterWait.WithLabelValues(endpoint).Observe(wait.Seconds())
}

// RecordRateLimiterTokens sets the available permit gauge.
func (mc *MetricsCollector) RecordRateLimiterTokens(name string, tokens float64) {
	if mc == nil {
		return
	}

	mc.rateLimiterTokens.WithLabelValues(name).Set(tokens)
}

// RecordSessionStart increments the session start counter.
func (mc *MetricsCollector) RecordSessionStart() {
	if mc == nil {
		return
	}

	mc.sessionStarts.Inc()
}

// RecordSessionStop increments the session stop counter.
func (mc *MetricsCollector) RecordSessionStop() {
	if mc == nil {
		return
	}

	mc.sessionStops.Inc()
}

// RecordError increments the error counter for a classified kind.
func (mc *MetricsCollector) RecordError(kind, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(kind, method, endpoint).Inc()
}

// Registerer exposes the registerer the collector registered its metrics on.
func (mc *MetricsCollector) Registerer() prometheus.Registerer {
	return mc.registerer
}
