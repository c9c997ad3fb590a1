package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the parking service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted  *prometheus.CounterVec
	sessionsStopped  *prometheus.CounterVec
	sessionDuration  *prometheus.HistogramVec
	sessionRevenue   *prometheus.CounterVec
	paymentsRecorded *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers collectors, including Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_sessions_started_total",
			Help: "Total number of parking sessions started",
		}, []string{"lot_id"}),
		sessionsStopped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_sessions_stopped_total",
			Help: "Total number of parking sessions stopped",
		}, []string{"lot_id"}),
		sessionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parking_session_duration_minutes",
			Help:    "Duration of stopped parking sessions in minutes",
			Buckets: []float64{3, 15, 30, 60, 120, 240, 480, 1440, 2880},
		}, []string{"lot_id"}),
		sessionRevenue: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_session_cost_total",
			Help: "Sum of costs billed for stopped parking sessions",
		}, []string{"lot_id"}),
		paymentsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_payments_amount_total",
			Help: "Sum of recorded payments",
		}, []string{"lot_id"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parking_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// SessionStarted counts a started session.
func (m *Metrics) SessionStarted(lotID string) {
	m.sessionsStarted.WithLabelValues(lotID).Inc()
}

// SessionStopped counts a stopped session with its duration and cost.
func (m *Metrics) SessionStopped(lotID string, duration time.Duration, cost float64) {
	m.sessionsStopped.WithLabelValues(lotID).Inc()
	m.sessionDuration.WithLabelValues(lotID).Observe(duration.Minutes())
	m.sessionRevenue.WithLabelValues(lotID).Add(cost)
}

// PaymentRecorded adds amount to the payments counter.
func (m *Metrics) PaymentRecorded(lotID string, amount float64) {
	m.paymentsRecorded.WithLabelValues(lotID).Add(amount)
}

// ObserveRequest records one served HTTP request. route is the matched mux pattern, so lot ids
// do not explode label cardinality.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
