package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecalcMetrics records durations and outcomes of recalculation jobs.
type RecalcMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	updated  *prometheus.CounterVec
}

// NewRecalcMetrics registers the recalculation metrics on the provided registerer.
func NewRecalcMetrics(reg prometheus.Registerer) *RecalcMetrics {
	if reg == nil {
		return &RecalcMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recalc_job_duration_seconds",
		Help:    "Duration of recalculation jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recalc_job_success",
		Help: "Successful recalculation job executions.",
	}, []string{"scope"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recalc_job_failure",
		Help: "Failed recalculation job executions.",
	}, []string{"scope"})
	updated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recalc_receipts_updated",
		Help: "Receipts rewritten by recalculation jobs.",
	}, []string{"scope"})
	reg.MustRegister(duration, success, failure, updated)
	return &RecalcMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		updated:  updated,
	}
}

// ObserveDuration records the duration for the given job scope.
func (m *RecalcMetrics) ObserveDuration(scope string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(scope)).Observe(d.Seconds())
}

// IncSuccess increments the success counter for the given job scope.
func (m *RecalcMetrics) IncSuccess(scope string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(scope)).Inc()
}

// IncFailure increments the failure counter for the given job scope.
func (m *RecalcMetrics) IncFailure(scope string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(scope)).Inc()
}

// AddUpdated counts receipts rewritten by a job.
func (m *RecalcMetrics) AddUpdated(scope string, count int) {
	if m == nil || m.updated == nil || count <= 0 {
		return
	}
	m.updated.WithLabelValues(normalizeLabel(scope)).Add(float64(count))
}

func normalizeLabel(scope string) string {
	if scope == "" {
		return "unknown"
	}
	return scope
}
