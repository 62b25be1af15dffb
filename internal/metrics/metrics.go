// Package metrics exposes Prometheus request metrics for the local HTTP server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_http_requests_total",
		Help: "Total HTTP requests by operation and status",
	}, []string{"operation", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoice_http_request_duration_seconds",
		Help:    "Request latency by operation",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"operation"})
)

// Observe records one finished request.
func Observe(operation string, status int, elapsed time.Duration) {
	httpReqTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
