// Package metrics exposes Prometheus instrumentation for the HTTP server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculation outcomes.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Metrics groups the collectors registered by the server.
type Metrics struct {
	registry *prometheus.Registry

	CalculationsTotal   *prometheus.CounterVec
	CalculationDuration *prometheus.HistogramVec
	CacheLookups        *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	SavedProjects       prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CalculationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "construction_forecast_calculations_total",
				Help: "Total number of feasibility calculations by outcome",
			},
			[]string{"source", "status"},
		),
		CalculationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "construction_forecast_calculation_duration_seconds",
				Help:    "Duration of feasibility calculations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"source"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "construction_forecast_cache_lookups_total",
				Help: "Result cache lookups by outcome",
			},
			[]string{"result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "construction_forecast_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		SavedProjects: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "construction_forecast_saved_projects",
				Help: "Number of saved projects at the last listing",
			},
		),
	}
}

// ObserveCalculation records one calculation.
func (m *Metrics) ObserveCalculation(source, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CalculationsTotal.WithLabelValues(source, status).Inc()
	if status == StatusOK {
		m.CalculationDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	}
}

// ObserveCacheLookup records a cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument wraps next, counting requests per route and status code.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return promhttp.InstrumentHandlerCounter(
		m.HTTPRequests.MustCurryWith(prometheus.Labels{"route": route}),
		next,
	)
}
