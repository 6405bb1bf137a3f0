package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	LoginsTotal         *prometheus.CounterVec
	RefreshesTotal      *prometheus.CounterVec
	LogoutsTotal        prometheus.Counter
	BackendRequests     *prometheus.CounterVec
	BackendDuration     *prometheus.HistogramVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "godnsweb_logins_total",
			Help: "Authorization code exchanges by outcome",
		}, []string{"outcome"}),
		RefreshesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "godnsweb_token_refreshes_total",
			Help: "Access token refresh attempts by outcome",
		}, []string{"outcome"}),
		LogoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "godnsweb_logouts_total",
			Help: "Total number of logouts",
		}),
		BackendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "godnsweb_backend_requests_total",
			Help: "Requests sent to the DNS API by method and status class",
		}, []string{"method", "status"}),
		BackendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "godnsweb_backend_request_duration_seconds",
			Help:    "Duration of DNS API requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "godnsweb_http_request_duration_seconds",
			Help:    "Duration of console HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.RefreshesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementLogout() {
	if m == nil {
		return
	}
	m.LogoutsTotal.Inc()
}

func (m *Metrics) ObserveBackend(method, status string, start time.Time) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(method, status).Inc()
	m.BackendDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveHTTP(method, route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}
