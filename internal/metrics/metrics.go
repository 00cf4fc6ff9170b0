// Package metrics defines the storefront's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type Metrics struct {
	Registry *prometheus.Registry

	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	PageRequests    *prometheus.CounterVec
	PageDuration    *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	Invalidations   *prometheus.CounterVec
}

// New builds the collectors on a fresh registry, so tests can create as
// many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to the storefront backend.",
		}, []string{"code", "method"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
		PageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_requests_total",
			Help:      "Requests served by the storefront router.",
		}, []string{"route", "method", "status"}),
		PageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_request_duration_seconds",
			Help:      "Latency of storefront pages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_lookups_total",
			Help:      "Query cache lookups by result.",
		}, []string{"resource", "result"}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_invalidations_total",
			Help:      "Query cache invalidations by resource and origin.",
		}, []string{"resource", "origin"}),
	}
	reg.MustRegister(
		m.BackendRequests, m.BackendDuration,
		m.PageRequests, m.PageDuration,
		m.CacheLookups, m.Invalidations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// InstrumentTransport counts and times backend round trips.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if m == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperCounter(m.BackendRequests,
		promhttp.InstrumentRoundTripperDuration(m.BackendDuration, next))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObservePage(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.PageRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.PageDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(resource, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(resource, result).Inc()
}

func (m *Metrics) Invalidated(resource, origin string) {
	if m == nil {
		return
	}
	m.Invalidations.WithLabelValues(resource, origin).Inc()
}
