// Package monitoring exposes Prometheus metrics and readiness checks for the API.
package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tasktimer"

// HTTPRequests counts handled requests by method, route template and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPLatency tracks request duration in seconds.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// HTTPInFlight tracks requests currently being served.
var HTTPInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "http_requests_in_flight",
	Help:      "Number of HTTP requests currently being served.",
})

// TimersStarted counts successful timer starts.
var TimersStarted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "timers_started_total",
	Help:      "Total timers started.",
})

// TimersStopped counts successful timer stops.
var TimersStopped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "timers_stopped_total",
	Help:      "Total timers stopped.",
})

// TrackedSeconds accumulates the durations of stopped time entries.
var TrackedSeconds = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "tracked_seconds_total",
	Help:      "Total seconds recorded by stopped timers.",
})

// HealthCheckStatus is 1 when the named readiness check passed on its last run.
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "health_check_status",
	Help:      "Result of the last readiness check (1 healthy, 0 unhealthy).",
}, []string{"check"})

// RecordTimerStop updates the timer counters for a stopped entry.
func RecordTimerStop(durationSeconds float64) {
	TimersStopped.Inc()
	if durationSeconds > 0 {
		TrackedSeconds.Add(durationSeconds)
	}
}

// MetricsMiddleware records request count and latency per matched route.
// Unmatched paths are reported under a single "unmatched" route label to
// keep cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		HTTPInFlight.Inc()
		defer HTTPInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default Prometheus registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
