// Package metrics exposes Prometheus collectors for the HTTP surface and the
// extraction pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles all collectors behind one private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	extractionsTotal *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stundenplan",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stundenplan",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		extractionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stundenplan",
			Subsystem: "extract",
			Name:      "extractions_total",
			Help:      "Extraction attempts by outcome.",
		}, []string{"outcome"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stundenplan",
			Subsystem: "extract",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"stage"}),
	}
}

// Handler serves this registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CountRequest records one finished HTTP request.
func (m *Metrics) CountRequest(route, method string, status int) {
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route string, d time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// CountExtraction records one extraction outcome.
func (m *Metrics) CountExtraction(outcome string) {
	m.extractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records the latency of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
