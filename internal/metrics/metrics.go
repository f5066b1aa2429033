// Package metrics holds the Prometheus registry for a recstore server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/recstore/internal/cache"
)

const namespace = "recstore"

// Metrics owns a private registry. Nothing is registered globally.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a registry with the Go and process collectors and the HTTP
// request metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}))

	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	registry.MustRegister(m.requests, m.duration)
	return m
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RegisterCache exports the counters of a Lookup Cache. stats is called on
// every scrape.
func (m *Metrics) RegisterCache(stats func() cache.Stats) {
	counter := func(name, help string, read func(cache.Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(read(stats())) })
	}

	m.registry.MustRegister(
		counter("hits_total", "Lookups served from the cache.", func(s cache.Stats) uint64 { return s.Hits }),
		counter("misses_total", "Lookups not served from the cache.", func(s cache.Stats) uint64 { return s.Misses }),
		counter("loads_total", "Store reads issued by the cache.", func(s cache.Stats) uint64 { return s.Loads }),
		counter("shared_loads_total", "Lookups that joined an in-flight load.", func(s cache.Stats) uint64 { return s.SharedLoads }),
		counter("evictions_total", "Entries dropped for capacity or expiry.", func(s cache.Stats) uint64 { return s.Evictions }),
		counter("invalidations_total", "Entries invalidated by writes.", func(s cache.Stats) uint64 { return s.Invalidations }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Entries currently cached.",
		}, func() float64 { return float64(stats().Size) }),
	)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
