// Package metrics exposes Prometheus counters for the aggregator service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Listings        *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	RequestDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass a fresh prometheus.NewRegistry()
// in tests.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_requests_total",
			Help: "Aggregation requests handled, by requested source.",
		}, []string{"source"}),
		Listings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_listings_total",
			Help: "Listings returned, by site.",
		}, []string{"site"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aggregator_fetch_errors_total",
			Help: "Failed site polls, by site.",
		}, []string{"site"}),
		RequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "aggregator_request_duration_seconds",
			Help:    "Time to answer one aggregation request.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		gatherer: reg,
	}
}

// Handler returns the /metrics exposition handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(source).Inc()
	m.RequestDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) AddListings(site string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Listings.WithLabelValues(site).Add(float64(n))
}

func (m *Metrics) FetchFailed(site string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(site).Inc()
}
