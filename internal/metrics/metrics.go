// Package metrics exposes Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agroclimate"

// Upstream call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeCircuitOpen = "circuit_open"
)

// Metrics owns a private registry so tests can create independent instances.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	providerUp       *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		upstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Outbound provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		upstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Outbound provider call latency.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"provider"}),
		providerUp: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_up",
			Help:      "1 when the last scheduled probe of the provider succeeded.",
		}, []string{"provider"}),
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveUpstream records one outbound call.
func (m *Metrics) ObserveUpstream(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(provider, outcome).Inc()
	m.upstreamDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// SetProviderUp records the result of a provider probe.
func (m *Metrics) SetProviderUp(provider string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.providerUp.WithLabelValues(provider).Set(v)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
