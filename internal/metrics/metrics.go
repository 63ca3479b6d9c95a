package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)

	VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "innovatex_votes_total", Help: "Votes recorded on products"},
		[]string{"direction"},
	)
	ReportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "innovatex_reports_total", Help: "Product reports recorded"},
	)
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "innovatex_payments_total", Help: "Payment completions by outcome"},
		[]string{"outcome"},
	)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "innovatex_auth_failures_total", Help: "Requests rejected by auth gates"},
		[]string{"reason"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "innovatex_rate_limited_total", Help: "Requests rejected by the rate limiter"},
	)
)

var once sync.Once

// MustRegister registers the collectors with the default registry; safe to call more than once.
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight,
			VotesTotal, ReportsTotal, PaymentsTotal, AuthFailures, RateLimited)
	})
}
