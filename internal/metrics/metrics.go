// Package metrics exposes Prometheus instrumentation for the bakery API:
// standard HTTP request metrics plus counters for the order workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks how long each HTTP request takes,
	// broken down by method, path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bakery",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bakery",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// OrdersCreated counts successfully placed orders.
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bakery",
		Subsystem: "orders",
		Name:      "created_total",
		Help:      "Total number of orders created.",
	})

	// OrdersCancelled counts orders cancelled by users or admins.
	OrdersCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bakery",
		Subsystem: "orders",
		Name:      "cancelled_total",
		Help:      "Total number of orders cancelled.",
	})

	// OrdersRejected counts checkout attempts rejected for business
	// reasons (empty cart, missing product, insufficient stock).
	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bakery",
			Subsystem: "orders",
			Name:      "rejected_total",
			Help:      "Total number of rejected checkout attempts.",
		},
		[]string{"reason"},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		RequestDuration,
		RequestTotal,
		OrdersCreated,
		OrdersCancelled,
		OrdersRejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Middleware records duration and count for every request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).
			Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
	})
}
