// Package metrics exposes Prometheus instrumentation for grading.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
)

// Result label values.
const (
	ResultPass  = "pass"
	ResultFail  = "fail"
	ResultError = "error"
)

var (
	// submissionsTotal counts graded submissions by entry point and outcome.
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exgrade_submissions_total",
		Help: "The total number of graded workbook submissions",
	}, []string{"source", "result"})

	// rowMismatches tracks how many rows fail per graded submission.
	rowMismatches = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exgrade_row_mismatches",
		Help:    "Row mismatches per graded submission",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	}, []string{"source"})

	// gradingSeconds tracks load plus validation time.
	gradingSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exgrade_grading_duration_seconds",
		Help:    "Time spent loading and validating a submission",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
)

// Observe records one grading attempt. report is nil when loading failed.
func Observe(source string, report *models.Report, elapsed time.Duration) {
	gradingSeconds.WithLabelValues(source).Observe(elapsed.Seconds())

	switch {
	case report == nil:
		submissionsTotal.WithLabelValues(source, ResultError).Inc()
		return
	case report.Pass:
		submissionsTotal.WithLabelValues(source, ResultPass).Inc()
	default:
		submissionsTotal.WithLabelValues(source, ResultFail).Inc()
	}
	rowMismatches.WithLabelValues(source).Observe(float64(len(report.RowMismatches)))
}

// SubmissionsTotal returns the counter for tests and debug endpoints.
func SubmissionsTotal() *prometheus.CounterVec {
	return submissionsTotal
}
