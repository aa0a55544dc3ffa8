package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is a no-op.
type Metrics struct {
	registry         *prometheus.Registry
	requestCount     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errorCount       *prometheus.CounterVec
	authzDenied      *prometheus.CounterVec
	casesCreated     prometheus.Counter
	casesAssigned    *prometheus.CounterVec
	statusTransition *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses by domain error code",
		}, []string{"method", "path", "code"}),
		authzDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authorization_denials_total",
			Help: "Total number of requests rejected as forbidden",
		}, []string{"path"}),
		casesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cases_created_total",
			Help: "Total number of cases created",
		}),
		casesAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cases_assigned_total",
			Help: "Total number of case assignments by assignee role",
		}, []string{"assignee_role"}),
		statusTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cases_status_changed_total",
			Help: "Total number of case status changes",
		}, []string{"from_status", "to_status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.authzDenied,
		m.casesCreated,
		m.casesAssigned,
		m.statusTransition,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(method, path, code).Inc()
}

// RecordAuthorizationDenied counts a forbidden response.
func (m *Metrics) RecordAuthorizationDenied(path string) {
	if m == nil {
		return
	}
	m.authzDenied.WithLabelValues(path).Inc()
}

// RecordCaseCreated counts a new case.
func (m *Metrics) RecordCaseCreated() {
	if m == nil {
		return
	}
	m.casesCreated.Inc()
}

// RecordCaseAssigned counts an assignment.
func (m *Metrics) RecordCaseAssigned(assigneeRole string) {
	if m == nil {
		return
	}
	m.casesAssigned.WithLabelValues(assigneeRole).Inc()
}

// RecordStatusChange counts a status transition.
func (m *Metrics) RecordStatusChange(from, to string) {
	if m == nil {
		return
	}
	m.statusTransition.WithLabelValues(from, to).Inc()
}
