// Package metrics provides Prometheus metrics for identity-gateway.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, endpoint and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// RequestDuration measures HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1.0, 2.5, 5.0, 7.5, 10.0},
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInProgress tracks requests currently being handled.
	RequestsInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently in progress",
		},
		[]string{"method", "endpoint"},
	)

	// ResponseSize observes response body sizes. The bucket boundaries are
	// part of the dashboard contract and must not change.
	ResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1.0, 2.5, 5.0, 7.5, 10.0},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRequest records a completed HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration float64, responseSize int64) {
	RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
	if responseSize > 0 {
		ResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
	}
}

// RequestStarted marks a request as in progress.
func RequestStarted(method, endpoint string) {
	RequestsInProgress.WithLabelValues(method, endpoint).Inc()
}

// RequestFinished marks a request as no longer in progress.
func RequestFinished(method, endpoint string) {
	RequestsInProgress.WithLabelValues(method, endpoint).Dec()
}
