// Package metrics holds the Prometheus collectors for request latency and
// request outcome, labelled by operation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todo_service"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	// requestLatency measures how long an operation took from the time the
	// handler started working on it.
	requestLatency *prometheus.HistogramVec

	// requestOutcome counts completed operations by outcome.
	requestOutcome *prometheus.CounterVec

	// authzDecisions counts authorization decisions by effect.
	authzDecisions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Histogram of operation latencies.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestOutcome: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Count of completed operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		authzDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authz_decisions_total",
				Help:      "Count of authorization decisions by effect.",
			},
			[]string{"effect"},
		),
	}

	m.registry.MustRegister(
		m.requestLatency,
		m.requestOutcome,
		m.authzDecisions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveLatency records the time elapsed since start for operation.
func (m *Metrics) ObserveLatency(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordOutcome counts one completed operation.
func (m *Metrics) RecordOutcome(operation string, success bool) {
	if m == nil {
		return
	}
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	m.requestOutcome.WithLabelValues(operation, outcome).Inc()
}

// RecordDecision counts one authorization decision; effect is Allow or Deny.
func (m *Metrics) RecordDecision(effect string) {
	if m == nil {
		return
	}
	m.authzDecisions.WithLabelValues(effect).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
