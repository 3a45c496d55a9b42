// Package telemetry provides the Prometheus metrics exported by loginpanel.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loginpanel"

// Outcome labels for sign-in and registration counters.
const (
	ResultSuccess     = "success"
	ResultFailure     = "failure"
	ResultInvalid     = "invalid_input"
	ResultDuplicate   = "duplicate"
	ResultError       = "error"
	ResultUnsupported = "unsupported"
)

// Metrics holds the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	signInAttempts  *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		signInAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signin_attempts_total",
				Help:      "Total number of sign-in attempts by outcome",
			},
			[]string{"backend", "result"},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Total number of registration attempts by outcome",
			},
			[]string{"backend", "result"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}

	registry.MustRegister(
		m.signInAttempts,
		m.registrations,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordSignIn counts one sign-in attempt.
func (m *Metrics) RecordSignIn(backend, result string) {
	if m == nil {
		return
	}
	m.signInAttempts.WithLabelValues(backend, result).Inc()
}

// RecordRegistration counts one registration attempt.
func (m *Metrics) RecordRegistration(backend, result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(backend, result).Inc()
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
