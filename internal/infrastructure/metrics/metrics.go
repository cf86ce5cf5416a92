package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the web tier.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	pageRenders     *prometheus.CounterVec
	toasts          *prometheus.CounterVec
	pageSessions    prometheus.Gauge
	sessionsSwept   prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		backendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartdesk_backend_requests_total",
				Help: "Total number of calls made to the SmartDesk API",
			},
			[]string{"endpoint", "status"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartdesk_backend_request_duration_seconds",
				Help:    "SmartDesk API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		pageRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartdesk_page_renders_total",
				Help: "Total number of rendered pages",
			},
			[]string{"page", "source"},
		),
		toasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartdesk_toasts_total",
				Help: "Total number of toasts queued, by kind",
			},
			[]string{"kind"},
		),
		pageSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "smartdesk_page_sessions",
				Help: "Number of cached page sessions",
			},
		),
		sessionsSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "smartdesk_page_sessions_swept_total",
				Help: "Total number of expired page sessions removed by the sweeper",
			},
		),
	}
}

// ObserveBackend records one API call. status is the HTTP status, or 0 for a transport failure.
func (m *Metrics) ObserveBackend(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	m.backendRequests.WithLabelValues(endpoint, statusLabel).Inc()
	m.backendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// PageRendered records a rendered page. source is "backend", "cache" or "static".
func (m *Metrics) PageRendered(page, source string) {
	if m == nil {
		return
	}
	m.pageRenders.WithLabelValues(page, source).Inc()
}

// ToastQueued records a toast written to the flash cookie.
func (m *Metrics) ToastQueued(kind string) {
	if m == nil {
		return
	}
	m.toasts.WithLabelValues(kind).Inc()
}

// SetPageSessions updates the cached page session gauge.
func (m *Metrics) SetPageSessions(n int) {
	if m == nil {
		return
	}
	m.pageSessions.Set(float64(n))
}

// SessionsSwept adds n to the swept counter.
func (m *Metrics) SessionsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(n))
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
