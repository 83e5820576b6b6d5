package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for batch processing and the HTTP API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Identifier validations by kind ("iban", "bic") and result ("valid", "invalid")
	Validations *prometheus.CounterVec

	// Validation failures by rule, e.g. "invalid_check_digit"
	ValidationFailures *prometheus.CounterVec

	// Batch files by status ("processed", "failed")
	FilesProcessed *prometheus.CounterVec

	// Time spent on one batch file, parsing through archiving
	FileDuration prometheus.Histogram

	// HTTP request latency by route pattern and status code
	HTTPDuration *prometheus.HistogramVec
}

// New registers every metric with reg. Passing a fresh registry keeps tests
// independent of the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ibankit_validations_total",
			Help: "Total identifier validations by kind and result",
		}, []string{"kind", "result"}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ibankit_validation_failures_total",
			Help: "Total validation failures by rule",
		}, []string{"rule"}),

		FilesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ibankit_batch_files_total",
			Help: "Total batch files handled by status",
		}, []string{"status"}),

		FileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ibankit_batch_file_duration_seconds",
			Help:    "Duration of processing a single batch file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ibankit_http_request_duration_seconds",
			Help:    "Duration of HTTP API requests",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"route", "status"}),
	}
}

// RecordValidation counts one identifier validation. An empty rule means the
// identifier was valid.
func (m *Metrics) RecordValidation(kind, rule string) {
	if m == nil {
		return
	}
	if rule == "" {
		m.Validations.WithLabelValues(kind, "valid").Inc()
		return
	}
	m.Validations.WithLabelValues(kind, "invalid").Inc()
	m.ValidationFailures.WithLabelValues(rule).Inc()
}

// RecordFile counts a finished batch file and its duration.
func (m *Metrics) RecordFile(status string, d time.Duration) {
	if m != nil {
		m.FilesProcessed.WithLabelValues(status).Inc()
		m.FileDuration.Observe(d.Seconds())
	}
}

// ObserveHTTP records the latency of an HTTP request.
func (m *Metrics) ObserveHTTP(route, status string, d time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(route, status).Observe(d.Seconds())
	}
}
