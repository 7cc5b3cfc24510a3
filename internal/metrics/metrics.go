// Package metrics exposes refresh pipeline instrumentation in Prometheus
// format. Every method is safe to call on a nil *Metrics so components can
// run without instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

// Refresh outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomePreserved = "preserved"
	OutcomeFallback  = "fallback"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	pagesTotal      prometheus.Counter
	upstreamErrors  *prometheus.CounterVec
	items           prometheus.Gauge
	documentBytes   prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Completed refresh attempts by outcome.",
		}, []string{"outcome"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a full refresh cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		pagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_pages_total",
			Help:      "Catalog pages fetched from the upstream API.",
		}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed upstream page requests by HTTP status (0 for transport errors).",
		}, []string{"status"}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Records in the published document.",
		}),
		documentBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of the published document.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
	}

	reg.MustRegister(
		m.refreshTotal,
		m.refreshDuration,
		m.pagesTotal,
		m.upstreamErrors,
		m.items,
		m.documentBytes,
		m.lastSuccess,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObservePage counts one fetched page.
func (m *Metrics) ObservePage(items int) {
	if m == nil {
		return
	}
	m.pagesTotal.Inc()
}

// ObserveUpstreamError counts one failed page request.
func (m *Metrics) ObserveUpstreamError(statusCode int) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// ObserveRefresh records a finished refresh attempt.
func (m *Metrics) ObserveRefresh(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(outcome).Inc()
	m.refreshDuration.Observe(took.Seconds())
}

// ObservePublished records the document that is now served.
func (m *Metrics) ObservePublished(items, size int, at time.Time) {
	if m == nil {
		return
	}
	m.items.Set(float64(items))
	m.documentBytes.Set(float64(size))
	m.lastSuccess.Set(float64(at.Unix()))
}
