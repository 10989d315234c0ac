// Package metrics provides Prometheus metrics for the deploy dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard API.
type Metrics struct {
	RequestsTotal           *prometheus.CounterVec
	UpstreamDuration        *prometheus.HistogramVec
	UpstreamErrorsTotal     *prometheus.CounterVec
	EnrichmentFailuresTotal prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_requests_total",
				Help: "Total dashboard API requests by route, method, and status.",
			},
			[]string{"route", "method", "status"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_upstream_request_duration_seconds",
				Help:    "Upstream call duration by service and operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),
		UpstreamErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_upstream_errors_total",
				Help: "Total upstream errors by service and error kind.",
			},
			[]string{"service", "kind"},
		),
		EnrichmentFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dashboard_enrichment_failures_total",
				Help: "Per-project latest-deployment sub-fetches that were absorbed as null.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.UpstreamDuration)
	reg.MustRegister(m.UpstreamErrorsTotal)
	reg.MustRegister(m.EnrichmentFailuresTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(route, method, status string) {
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
}

// ObserveUpstream records an upstream call duration.
func (m *Metrics) ObserveUpstream(service, operation string, seconds float64) {
	m.UpstreamDuration.WithLabelValues(service, operation).Observe(seconds)
}

// RecordUpstreamError increments the upstream error counter.
func (m *Metrics) RecordUpstreamError(service, kind string) {
	m.UpstreamErrorsTotal.WithLabelValues(service, kind).Inc()
}

// RecordEnrichmentFailure counts a latest-deployment sub-fetch absorbed as null.
func (m *Metrics) RecordEnrichmentFailure() {
	m.EnrichmentFailuresTotal.Inc()
}
