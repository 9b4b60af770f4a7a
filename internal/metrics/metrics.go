// Package metrics exposes Prometheus collectors for the library service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	BorrowingsCreated  prometheus.Counter
	BorrowingsReturned prometheus.Counter
	RequestFailures    *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		BorrowingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "borrowings_created_total",
			Help:      "Borrowings opened.",
		}),
		BorrowingsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "borrowings_returned_total",
			Help:      "Borrowings moved to the returned state.",
		}),
		RequestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "request_failures_total",
			Help:      "Failed API operations by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.BorrowingsCreated,
		m.BorrowingsReturned,
		m.RequestFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// BorrowingCreated counts a new active loan. Safe on a nil receiver.
func (m *Metrics) BorrowingCreated() {
	if m != nil {
		m.BorrowingsCreated.Inc()
	}
}

// BorrowingReturned counts a completed return. Safe on a nil receiver.
func (m *Metrics) BorrowingReturned() {
	if m != nil {
		m.BorrowingsReturned.Inc()
	}
}

// Failure counts a failed operation by error kind. Safe on a nil receiver.
func (m *Metrics) Failure(kind string) {
	if m != nil {
		m.RequestFailures.WithLabelValues(kind).Inc()
	}
}
