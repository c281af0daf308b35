package http

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Requests            *prometheus.CounterVec
	Duration            *prometheus.HistogramVec
	RateLimitRejections prometheus.Counter
}

// NewMetrics creates the HTTP collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
	}
	reg.MustRegister(m.Requests, m.Duration, m.RateLimitRejections)
	return m
}
