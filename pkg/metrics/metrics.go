// Package metrics owns the prometheus registry and the service counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects HTTP, auth and scheduler metrics on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bonsai_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bonsai_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bonsai_auth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bonsai_auth_registrations_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bonsai_auth_token_rejections_total",
			Help: "Rejected bearer tokens by reason.",
		}, []string{"reason"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bonsai_scheduler_job_runs_total",
			Help: "Scheduled job runs by job and result.",
		}, []string{"job", "result"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.logins, m.registrations, m.rejections, m.jobRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler { return m.handler }

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRequest(method, route, code string, seconds float64) {
	m.requestsTotal.WithLabelValues(method, route, code).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// LoginAttempt, Registration and TokenRejected implement auth.Observer.
func (m *Metrics) LoginAttempt(result string) { m.logins.WithLabelValues(result).Inc() }

func (m *Metrics) Registration(result string) { m.registrations.WithLabelValues(result).Inc() }

func (m *Metrics) TokenRejected(reason string) { m.rejections.WithLabelValues(reason).Inc() }

func (m *Metrics) JobRun(job, result string) { m.jobRuns.WithLabelValues(job, result).Inc() }
