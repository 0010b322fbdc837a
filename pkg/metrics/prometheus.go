// Package metrics provides Prometheus metrics for the eco-points service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	pointsBuckets    []float64
	enabled          bool
	registry         prometheus.Registerer

	// Scoring
	resolutions        prometheus.Counter
	pointsAwarded      prometheus.Histogram
	activitiesCredited *prometheus.CounterVec
	labelsUnknown      prometheus.Counter
	resolveLatency     prometheus.Histogram

	// Submissions
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsScored    prometheus.Counter
	submissionErrors     prometheus.Counter

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram

	// Running totals
	usersTracked    prometheus.Gauge
	pointsLifetime  prometheus.Counter
	sessionsCounted prometheus.Counter

	// Detector
	detectorLatency prometheus.Histogram
	detectorErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry (prometheus.DefaultRegisterer unless overridden).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eco",
		subsystem:        "points",
		histogramBuckets: prometheus.DefBuckets,
		pointsBuckets:    []float64{0, 3, 5, 8, 10, 15, 20, 30, 50},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}
	histogram := func(name, help string, buckets []float64) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
		})
	}

	m.resolutions = counter("resolutions_total", "Number of detection sets resolved to a score")
	m.pointsAwarded = histogram("points_awarded", "Points awarded per resolved detection set", m.pointsBuckets)
	m.activitiesCredited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "activities_credited_total",
		Help: "Activities credited, by activity key and kind",
	}, []string{"activity", "kind"})
	m.labelsUnknown = counter("labels_unknown_total", "Detected labels with no catalog entry")
	m.resolveLatency = histogram("resolve_latency_milliseconds", "Resolver latency in milliseconds", m.histogramBuckets)

	m.submissionsAccepted = counter("submissions_accepted_total", "Submissions accepted for async scoring")
	m.submissionsDuplicate = counter("submissions_duplicate_total", "Submissions rejected as duplicates")
	m.submissionsScored = counter("submissions_scored_total", "Submissions scored by workers")
	m.submissionErrors = counter("submission_errors_total", "Submissions that failed to record")

	m.queueSize = gauge("queue_size", "Current submission queue length")
	m.queueCapacity = gauge("queue_capacity", "Submission queue capacity")
	m.queueEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Rejected enqueues by reason",
	}, []string{"reason"})
	m.workerCount = gauge("worker_count", "Number of scoring workers")
	m.workerLatency = histogram("worker_latency_milliseconds", "Per-submission worker latency", m.histogramBuckets)

	m.usersTracked = gauge("users_tracked", "Users with running totals")
	m.pointsLifetime = counter("points_lifetime_total", "Points added to running totals")
	m.sessionsCounted = counter("sessions_total", "Sessions added to running totals")

	m.detectorLatency = histogram("detector_latency_milliseconds", "Object detector latency", m.histogramBuckets)
	m.detectorErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "detector_errors_total",
		Help: "Object detector failures by reason",
	}, []string{"reason"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_errors_total",
		Help: "HTTP error responses by endpoint and type",
	}, []string{"endpoint", "error_type"})
}

// Scoring

// RecordResolution records one resolver run.
func RecordResolution(points int, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.resolutions.Inc()
	globalManager.pointsAwarded.Observe(float64(points))
	globalManager.resolveLatency.Observe(latencyMs)
}

// RecordActivityCredited counts one credited activity. kind is "simple" or "compound".
func RecordActivityCredited(activity, kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.activitiesCredited.WithLabelValues(activity, kind).Inc()
}

// RecordUnknownLabels adds n labels that matched nothing in the catalog.
func RecordUnknownLabels(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.labelsUnknown.Add(float64(n))
}

// Submissions

// RecordSubmissionAccepted counts an accepted submission.
func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

// RecordSubmissionDuplicate counts a duplicate submission.
func RecordSubmissionDuplicate() { globalManager.submissionsDuplicate.Inc() }

// RecordSubmissionScored counts a submission scored by a worker.
func RecordSubmissionScored() { globalManager.submissionsScored.Inc() }

// RecordSubmissionError counts a submission that failed to record.
func RecordSubmissionError() { globalManager.submissionErrors.Inc() }

// Queue and workers

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerLatency observes per-submission processing latency.
func RecordWorkerLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// Running totals

// UpdateUsersTracked sets the number of users with running totals.
func UpdateUsersTracked(count int) { globalManager.usersTracked.Set(float64(count)) }

// RecordSessionTotals adds one session and its points to the lifetime counters.
func RecordSessionTotals(points int) {
	globalManager.sessionsCounted.Inc()
	if points > 0 {
		globalManager.pointsLifetime.Add(float64(points))
	}
}

// Detector

// RecordDetectorLatency observes object detector latency.
func RecordDetectorLatency(latencyMs float64) { globalManager.detectorLatency.Observe(latencyMs) }

// RecordDetectorError counts a detector failure.
func RecordDetectorError(reason string) {
	globalManager.detectorErrors.WithLabelValues(reason).Inc()
}

// HTTP

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
