// Package metrics provides Prometheus metrics for the scorebook service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scorebook service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Scoring
	scoreEvents     *prometheus.CounterVec
	duplicateEvents prometheus.Counter
	inningsEnded    prometheus.Counter
	matchesStarted  prometheus.Counter
	matchesComplete *prometheus.CounterVec
	liveMatches     prometheus.Gauge
	tournaments     prometheus.Gauge
	spectators      prometheus.Gauge

	// Live store publishing
	publishLatency  *prometheus.HistogramVec
	publishFailures *prometheus.CounterVec
	publishRetries  prometheus.Counter

	// Standings pipeline
	standingsRecomputes prometheus.Counter
	queueSize           prometheus.Gauge
	queueCapacity       prometheus.Gauge
	queueUtilization    prometheus.Gauge
	queueEnqueueErrors  prometheus.Counter
	workerCount         prometheus.Gauge
	workerErrors        prometheus.Counter
	workerLatency       prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorebook",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: constLabels,
		}, labels)
	}
	histVec := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
			Buckets: m.histogramBuckets, ConstLabels: constLabels,
		}, labels)
	}

	m.scoreEvents = counterVec("score_events_total", "Score events applied to live matches", "event")
	m.duplicateEvents = counter("score_events_duplicate_total", "Score events acknowledged as retries and not applied")
	m.inningsEnded = counter("innings_ended_total", "Innings closed, manually or by over/wicket limits")
	m.matchesStarted = counter("matches_started_total", "Matches moved from Scheduled to Live")
	m.matchesComplete = counterVec("matches_completed_total", "Matches completed by outcome", "outcome")
	m.liveMatches = gauge("live_matches", "Matches currently Live")
	m.tournaments = gauge("tournaments", "Tournaments held by this instance")
	m.spectators = gauge("spectator_connections", "Open spectator websocket connections")

	m.publishLatency = histVec("publish_latency_milliseconds", "Live store write latency in milliseconds", "kind")
	m.publishFailures = counterVec("publish_failures_total", "Live store writes that failed after all retries", "kind")
	m.publishRetries = counter("publish_retries_total", "Live store write retries")

	m.standingsRecomputes = counter("standings_recomputes_total", "Full points table recomputations")
	m.queueSize = gauge("result_queue_size", "Completed results waiting for downstream processing")
	m.queueCapacity = gauge("result_queue_capacity", "Capacity of the result queue")
	m.queueUtilization = gauge("result_queue_utilization", "Result queue utilisation ratio (0-1)")
	m.queueEnqueueErrors = counter("result_queue_enqueue_errors_total", "Results rejected by the queue")
	m.workerCount = gauge("worker_count", "Result workers running")
	m.workerErrors = counter("worker_errors_total", "Result processing failures")
	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "worker_processing_latency_milliseconds",
		Help: "Result processing latency in milliseconds", Buckets: m.histogramBuckets, ConstLabels: constLabels,
	})

	m.httpRequests = counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = histVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = gauge("system_goroutines", "Goroutines running")
}

// Scoring Functions.

// RecordScoreEvent counts an applied score event.
func RecordScoreEvent(event string) {
	globalManager.scoreEvents.WithLabelValues(event).Inc()
}

// RecordDuplicateEvent counts a retried score event.
func RecordDuplicateEvent() {
	globalManager.duplicateEvents.Inc()
}

// RecordInningsEnded counts a closed innings.
func RecordInningsEnded() {
	globalManager.inningsEnded.Inc()
}

// RecordMatchStarted counts a started match and bumps the live gauge.
func RecordMatchStarted() {
	globalManager.matchesStarted.Inc()
	globalManager.liveMatches.Inc()
}

// RecordMatchCompleted counts a completed match; outcome is "win" or "tie".
func RecordMatchCompleted(outcome string) {
	globalManager.matchesComplete.WithLabelValues(outcome).Inc()
	globalManager.liveMatches.Dec()
}

// UpdateTournaments sets the tournament gauge.
func UpdateTournaments(count int) {
	globalManager.tournaments.Set(float64(count))
}

// AddSpectators moves the open spectator connection gauge by delta.
func AddSpectators(delta int) {
	globalManager.spectators.Add(float64(delta))
}

// Publishing Functions.

// RecordPublishLatency records a live store write latency for a record kind.
func RecordPublishLatency(kind string, latencyMs float64) {
	globalManager.publishLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordPublishFailure counts a write that exhausted its retries.
func RecordPublishFailure(kind string) {
	globalManager.publishFailures.WithLabelValues(kind).Inc()
}

// RecordPublishRetry counts a retried write.
func RecordPublishRetry() {
	globalManager.publishRetries.Inc()
}

// Standings Pipeline Functions.

// RecordStandingsRecompute counts a points table recomputation.
func RecordStandingsRecompute() {
	globalManager.standingsRecomputes.Inc()
}

// UpdateQueueSize sets the result queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the result queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the result queue utilisation ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of result workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError counts a result processing failure.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records result processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// HTTP Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
