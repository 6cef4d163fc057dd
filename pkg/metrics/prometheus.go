package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	auditErrors *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentpredict_predictions_total",
				Help: "Total number of bridge prediction calls by outcome",
			},
			[]string{"outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentpredict_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		auditErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentpredict_audit_errors_total",
				Help: "Audit records that could not be stored",
			},
			[]string{"backend"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentpredict_model_call_seconds",
				Help:    "Duration of external model calls in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
	}
}

// RecordPrediction counts a model call and observes its latency.
func (r *Recorder) RecordPrediction(outcome string, seconds float64) {
	r.predictions.WithLabelValues(outcome).Inc()
	r.latency.WithLabelValues(outcome).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordAuditError records a failed audit write.
func (r *Recorder) RecordAuditError(backend string) {
	r.auditErrors.WithLabelValues(backend).Inc()
}
