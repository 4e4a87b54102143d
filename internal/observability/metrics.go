// Package observability holds the Prometheus metrics shared by the HTTP
// layer and the collaborator adapters.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "restore"

// Metrics groups every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	collaborator    *prometheus.CounterVec
	basketConflicts prometheus.Counter
	events          *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry, including the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		// Labels: route (mux pattern), method, status
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		// Labels: collaborator (payments, images, embeddings, vector_index, chat), outcome (success, error)
		collaborator: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collaborator",
			Name:      "calls_total",
			Help:      "Calls to external collaborators by outcome",
		}, []string{"collaborator", "outcome"}),
		basketConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "basket",
			Name:      "version_conflicts_total",
			Help:      "Basket writes retried after an optimistic version conflict",
		}),
		// Labels: type (product.upserted, product.deleted), outcome (published, dropped, failed)
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "product_events_total",
			Help:      "Product change events by type and outcome",
		}, []string{"type", "outcome"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// CollaboratorCall records the outcome of one external call.
func (m *Metrics) CollaboratorCall(name string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.collaborator.WithLabelValues(name, outcome).Inc()
}

// BasketConflict records one optimistic write conflict.
func (m *Metrics) BasketConflict() {
	if m == nil {
		return
	}
	m.basketConflicts.Inc()
}

// ProductEvent records the fate of one product change event.
func (m *Metrics) ProductEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
}
