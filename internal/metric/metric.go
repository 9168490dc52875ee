// Package metric holds the Prometheus collectors of the calendar server.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is one set of collectors on its own registry, so several
// servers (and tests) can coexist in a process.
type Metrics struct {
	registry *prometheus.Registry

	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	skipped        prometheus.Counter
	reloads        *prometheus.CounterVec
	groups         prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calgen_renders_total",
			Help: "Calendar renders by output kind and result",
		}, []string{"output", "result"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calgen_render_duration_seconds",
			Help:    "Time spent resolving, building and rendering one calendar",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"output"}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "calgen_skipped_events_total",
			Help: "Events dropped because they failed to resolve",
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calgen_document_reloads_total",
			Help: "Calendar file reloads by result",
		}, []string{"result"}),
		groups: f.NewGauge(prometheus.GaugeOpts{
			Name: "calgen_document_groups",
			Help: "Event groups in the loaded calendar file",
		}),
	}
}

// ObserveRender records one render attempt.
func (m *Metrics) ObserveRender(output string, d time.Duration, skipped int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.renders.WithLabelValues(output, result).Inc()
	m.renderDuration.WithLabelValues(output).Observe(d.Seconds())
	m.skipped.Add(float64(skipped))
}

// ObserveReload records one reload of the calendar file.
func (m *Metrics) ObserveReload(groups int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.groups.Set(float64(groups))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
