// Package metrics exposes Prometheus counters for lifecycle transitions,
// engine failures and consumed events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	transitions    *prometheus.CounterVec
	failures       *prometheus.CounterVec
	eventsConsumed *prometheus.CounterVec
}

// New registers the training collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ehs",
			Name:      "lifecycle_transitions_total",
			Help:      "Applied lifecycle transitions by entity and target status.",
		}, []string{"entity", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ehs",
			Name:      "lifecycle_failures_total",
			Help:      "Rejected lifecycle operations by operation and error kind.",
		}, []string{"operation", "kind"}),
		eventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ehs",
			Name:      "events_consumed_total",
			Help:      "Lifecycle events read back from Kafka by type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(m.transitions, m.failures, m.eventsConsumed)
	return m
}

func (m *Metrics) Transition(entity, status string) {
	m.transitions.WithLabelValues(entity, status).Inc()
}

func (m *Metrics) Failure(operation, kind string) {
	m.failures.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) EventConsumed(eventType string) {
	m.eventsConsumed.WithLabelValues(eventType).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
