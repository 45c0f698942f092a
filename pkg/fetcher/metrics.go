package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for fetch operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchcache_requests_total",
		Help: "Total fetch requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fetchcache_request_duration_seconds",
		Help:    "Fetch duration in seconds by resource",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetchcache_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})

	conditionalRequestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchcache_conditional_requests_total",
		Help: "Total requests sent with If-None-Match/If-Modified-Since",
	})

	notModifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchcache_not_modified_total",
		Help: "Total 304 Not Modified responses served from cache",
	})
)
