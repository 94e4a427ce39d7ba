// Package metrics exposes Prometheus collectors for the insight service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Insight records provider call outcomes. A nil *Insight is a no-op.
type Insight struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewInsight creates and registers the insight collectors on reg.
func NewInsight(reg prometheus.Registerer) *Insight {
	m := &Insight{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solace",
			Subsystem: "insight",
			Name:      "requests_total",
			Help:      "Insight requests by operation and outcome (generated or fallback).",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "solace",
			Subsystem: "insight",
			Name:      "request_duration_seconds",
			Help:      "Duration of insight requests including the provider round trip.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

// Observe records one finished request.
func (m *Insight) Observe(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(d.Seconds())
}

// NewRegistry returns a registry preloaded with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
