package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hackathon_registration"

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Registration pipeline metrics
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "registrations_total",
			Help:      "Registration submissions by terminal outcome",
		},
		[]string{"outcome"},
	)

	DuplicateCheckFailOpenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duplicate_check_fail_open_total",
			Help:      "Duplicate checks that could not complete and were treated as not duplicate",
		},
	)

	// Sheet metrics
	SheetCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "call_duration_seconds",
			Help:      "Google Sheets API call duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	SheetErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "errors_total",
			Help:      "Total number of Google Sheets API errors",
		},
		[]string{"operation"},
	)

	// Email metrics
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Emails handed to SMTP by status",
		},
		[]string{"kind", "status"},
	)

	// Database metrics
	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "errors_total",
			Help:      "Total number of database errors",
		},
		[]string{"error_type"},
	)

	// Scheduler metrics
	SchedulerJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "jobs_total",
			Help:      "Total number of scheduled jobs executed",
		},
		[]string{"job_name", "status"},
	)

	SchedulerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_duration_seconds",
			Help:      "Scheduled job execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job_name"},
	)

	LastSchedulerJobTime = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "last_job_timestamp",
			Help:      "Unix timestamp of last job execution",
		},
		[]string{"job_name"},
	)

	// Rate limiter metrics
	RateLimitRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rate_limiter",
			Name:      "rejected_total",
			Help:      "Total number of rate-limited requests",
		},
		[]string{"endpoint"},
	)
)

// Metrics provides convenience methods for recording metrics
type Metrics struct{}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, endpoint, http.StatusText(statusCode)).Inc()
	HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRegistration records the terminal outcome of one submission
func (m *Metrics) RecordRegistration(outcome string) {
	RegistrationsTotal.WithLabelValues(outcome).Inc()
}

// RecordFailOpen records a duplicate check that was skipped because the store was unreachable
func (m *Metrics) RecordFailOpen() {
	DuplicateCheckFailOpenTotal.Inc()
}

// RecordSheetCall records a Google Sheets call
func (m *Metrics) RecordSheetCall(operation string, err error, duration time.Duration) {
	SheetCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		SheetErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// RecordEmail records an email handed to the SMTP server
func (m *Metrics) RecordEmail(kind string, success bool) {
	status := "sent"
	if !success {
		status = "failed"
	}
	EmailsTotal.WithLabelValues(kind, status).Inc()
}

// RecordDatabaseError records a database error
func (m *Metrics) RecordDatabaseError(errorType string) {
	DatabaseErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordSchedulerJob records a scheduler job execution
func (m *Metrics) RecordSchedulerJob(jobName string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	SchedulerJobsTotal.WithLabelValues(jobName, status).Inc()
	SchedulerJobDuration.WithLabelValues(jobName).Observe(duration.Seconds())
	LastSchedulerJobTime.WithLabelValues(jobName).SetToCurrentTime()
}

// RecordRateLimited records a request rejected by the rate limiter
func (m *Metrics) RecordRateLimited(endpoint string) {
	RateLimitRejectedTotal.WithLabelValues(endpoint).Inc()
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
