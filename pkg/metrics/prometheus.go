// Package metrics provides Prometheus metrics for the segview console.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the console.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Page traffic
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Backend contract
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec

	// Controller
	submitOutcomes *prometheus.CounterVec
	loaderFailures *prometheus.CounterVec
	activeSessions prometheus.Gauge
	evictedTotal   prometheus.Counter

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "segview",
		subsystem:        "console",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.backendCalls = m.counterVec("backend_calls_total",
		"Backend API calls by endpoint and outcome (ok, request_error, transport_error)", "endpoint", "outcome")
	m.backendLatency = m.histogramVec("backend_call_duration_milliseconds",
		"Backend API call latency in milliseconds", "endpoint", "outcome")

	m.submitOutcomes = m.counterVec("submit_outcomes_total",
		"Prediction submits by outcome (success, request_error, transport_error, validation_error, rejected)", "outcome")
	m.loaderFailures = m.counterVec("loader_failures_total",
		"Background page loaders that degraded to an empty panel", "loader")
	m.activeSessions = m.gauge("active_sessions", "Live browser sessions held by the session store")
	m.evictedTotal = promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "sessions_evicted_total",
		Help: "Sessions evicted because the store was full", ConstLabels: m.constLabels,
	})

	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "system_gc_pause_time_milliseconds",
		Help: "GC pause time in milliseconds", ConstLabels: m.constLabels,
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes one served request's latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordBackendCall counts and times one backend exchange.
func RecordBackendCall(endpoint, outcome string, durationMs float64) {
	if globalManager.enabled {
		globalManager.backendCalls.WithLabelValues(endpoint, outcome).Inc()
		globalManager.backendLatency.WithLabelValues(endpoint, outcome).Observe(durationMs)
	}
}

// RecordSubmitOutcome counts one finished submit.
func RecordSubmitOutcome(outcome string) {
	if globalManager.enabled {
		globalManager.submitOutcomes.WithLabelValues(outcome).Inc()
	}
}

// RecordLoaderFailure counts a background loader that failed silently.
func RecordLoaderFailure(loader string) {
	if globalManager.enabled {
		globalManager.loaderFailures.WithLabelValues(loader).Inc()
	}
}

// UpdateActiveSessions sets the live session gauge.
func UpdateActiveSessions(count int) {
	if globalManager.enabled {
		globalManager.activeSessions.Set(float64(count))
	}
}

// RecordSessionEvicted counts one evicted session.
func RecordSessionEvicted() {
	if globalManager.enabled {
		globalManager.evictedTotal.Inc()
	}
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint counts an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
