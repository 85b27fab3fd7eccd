package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the shell.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Capability metrics
	CapabilityCalls    *prometheus.CounterVec
	CapabilityDuration *prometheus.HistogramVec

	// Window metrics
	WindowsActive prometheus.Gauge
	WindowsOpened prometheus.Counter

	// Notification metrics
	NotificationsSent prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),
		registry:  reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		CapabilityCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_capability_calls_total",
				Help: "Total number of capability tool invocations",
			},
			[]string{"capability", "tool", "status"},
		),
		CapabilityDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_capability_duration_seconds",
				Help:    "Capability invocation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"capability", "tool"},
		),

		WindowsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_windows_active",
				Help: "Number of open window instances",
			},
		),
		WindowsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_windows_opened_total",
				Help: "Total number of window instances opened",
			},
		),

		NotificationsSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_notifications_sent_total",
				Help: "Total number of notifications delivered",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_ws_connections",
				Help: "Number of active event stream connections",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_uptime_seconds",
				Help: "Shell uptime in seconds",
			},
		),
	}

	return m
}

// Handler returns the HTTP handler exposing the metrics registry. The
// uptime gauge is refreshed on every scrape.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
		inner.ServeHTTP(w, r)
	})
}

// RecordHTTPRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCapabilityCall records metrics for a capability tool invocation.
func (m *Metrics) RecordCapabilityCall(capability, tool, status string, duration time.Duration) {
	m.CapabilityCalls.WithLabelValues(capability, tool, status).Inc()
	m.CapabilityDuration.WithLabelValues(capability, tool).Observe(duration.Seconds())
}
