// Package metrics provides Prometheus metrics for the risk pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "retain"

var registry = prometheus.NewRegistry()

// GetRegistry returns the registry all pipeline metrics are attached to.
// HTTP serving code exposes it via promhttp.
func GetRegistry() *prometheus.Registry {
	return registry
}

var (
	studentsProcessed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "students_processed_total",
		Help:      "Students fully processed (scored, decided, persisted).",
	})
	studentsSkipped = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "students_skipped_total",
		Help:      "Student records skipped due to ingestion errors.",
	})
	riskTier = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "risk_tier_total",
		Help:      "Risk assessments by resulting tier.",
	}, []string{"tier"})

	advisorySuccess = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "advisory",
		Name:      "success_total",
		Help:      "Advisory service calls whose output passed validation.",
	})
	advisoryErrors = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "advisory",
		Name:      "errors_total",
		Help:      "Advisory service transport or response-shape failures.",
	})
	advisoryLatency = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "advisory",
		Name:      "latency_ms",
		Help:      "Advisory service call latency in milliseconds.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})
	fallbacks = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "advisory",
		Name:      "fallback_total",
		Help:      "Decisions answered by the fallback policy, by reason.",
	}, []string{"reason"})

	storeErrors = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Audit store write/read failures, by operation.",
	}, []string{"op"})

	workerCount = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "worker_count",
		Help:      "Configured pipeline worker count.",
	})

	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	httpRequestDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method"})
)

// RecordStudentProcessed counts one fully processed student.
func RecordStudentProcessed() { studentsProcessed.Inc() }

// RecordStudentSkipped counts one record rejected at ingestion.
func RecordStudentSkipped() { studentsSkipped.Inc() }

// RecordRiskTier counts an assessment landing in tier.
func RecordRiskTier(tier string) { riskTier.WithLabelValues(tier).Inc() }

// RecordAdvisorySuccess counts a validated advisory response.
func RecordAdvisorySuccess() { advisorySuccess.Inc() }

// RecordAdvisoryError counts a failed advisory call.
func RecordAdvisoryError() { advisoryErrors.Inc() }

// RecordAdvisoryLatency records one advisory call latency in ms.
func RecordAdvisoryLatency(ms float64) { advisoryLatency.Observe(ms) }

// RecordFallback counts a fallback decision with its reason.
func RecordFallback(reason string) { fallbacks.WithLabelValues(reason).Inc() }

// RecordStoreError counts an audit store failure for op.
func RecordStoreError(op string) { storeErrors.WithLabelValues(op).Inc() }

// UpdateWorkerCount publishes the configured worker count.
func UpdateWorkerCount(n int) { workerCount.Set(float64(n)) }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration in ms.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}
