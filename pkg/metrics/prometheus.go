// Package metrics provides Prometheus metrics for the piste scoring pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	latencyBuckets   []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	rowsProcessed *prometheus.CounterVec
	rowsFailed    *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	talentCards   *prometheus.CounterVec

	// Import/export boundary
	importRows *prometheus.CounterVec

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Run queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueEnqueued prometheus.Counter
	queueRejected prometheus.Counter
	workerActive  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "piste",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		latencyBuckets:   []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
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

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: buckets, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.runsTotal = m.counterVec("runs_total", "Recomputation runs by stage and final status", "stage", "status")
	m.runDuration = m.histogramVec("run_duration_seconds", "Recomputation run duration in seconds", m.histogramBuckets, "stage")
	m.rowsProcessed = m.counterVec("rows_processed_total", "Rows recomputed by stage", "stage")
	m.rowsFailed = m.counterVec("rows_failed_total", "Rows whose recomputation failed by stage", "stage")
	m.lookups = m.counterVec("lookups_total", "Score table lookups by outcome", "outcome")
	m.talentCards = m.counterVec("talent_cards_total", "Talent card classifications by tier", "card")

	m.importRows = m.counterVec("import_rows_total", "Imported rows by kind and outcome", "kind", "outcome")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Data store operation latency", m.latencyBuckets, "op")
	m.storeErrors = m.counterVec("store_errors_total", "Data store operation failures", "op")

	m.queueSize = m.gauge("queue_size", "Pending runs in the run queue")
	m.queueCapacity = m.gauge("queue_capacity", "Run queue capacity")
	m.queueEnqueued = m.counterVec("queue_enqueued_total", "Runs accepted by the queue").WithLabelValues()
	m.queueRejected = m.counterVec("queue_rejected_total", "Runs rejected because the queue was full").WithLabelValues()
	m.workerActive = m.gauge("workers_active", "Workers currently executing a run")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", m.latencyBuckets, "endpoint", "method", "status_code")
}

// RecordRun records a finished run.
func RecordRun(stage, status string, seconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.runsTotal.WithLabelValues(stage, status).Inc()
	globalManager.runDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordRows records processed and failed row counts for a stage.
func RecordRows(stage string, processed, failed int) {
	if !globalManager.enabled {
		return
	}
	globalManager.rowsProcessed.WithLabelValues(stage).Add(float64(processed))
	globalManager.rowsFailed.WithLabelValues(stage).Add(float64(failed))
}

// RecordLookup counts a score table lookup outcome.
func RecordLookup(outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.lookups.WithLabelValues(outcome).Inc()
}

// RecordTalentCard counts a classification.
func RecordTalentCard(card string) {
	if !globalManager.enabled {
		return
	}
	globalManager.talentCards.WithLabelValues(card).Inc()
}

// RecordImport counts imported or skipped rows for an import kind.
func RecordImport(kind, outcome string, n int) {
	if !globalManager.enabled || n == 0 {
		return
	}
	globalManager.importRows.WithLabelValues(kind, outcome).Add(float64(n))
}

// RecordStoreOp records a store operation latency and failure.
func RecordStoreOp(op string, latencyMs float64, err error) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// UpdateQueueSize sets the number of pending runs.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted run.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a run rejected by a full queue.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// UpdateWorkerActive adjusts the active worker gauge by delta.
func UpdateWorkerActive(delta int) {
	globalManager.workerActive.Add(float64(delta))
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
