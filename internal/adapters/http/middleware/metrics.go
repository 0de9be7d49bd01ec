package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal counts total HTTP requests
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apienvelope",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration measures request latency
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apienvelope",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// httpRequestsInFlight tracks concurrent requests
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "apienvelope",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Envelope metrics
var (
	// envelopeTransformsTotal counts envelope outcomes per response
	envelopeTransformsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apienvelope",
			Subsystem: "envelope",
			Name:      "transforms_total",
			Help:      "Total number of response envelope transforms by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	// envelopeOutcomeEnveloped - ответ пересобран в конверт
	envelopeOutcomeEnveloped = "enveloped"
	// envelopeOutcomePassthrough - ответ прошёл без изменений
	envelopeOutcomePassthrough = "passthrough"
	// envelopeOutcomeDegraded - конверт не построен, деградация в 500
	envelopeOutcomeDegraded = "degraded"
)

// recordEnvelopeOutcome фиксирует результат envelope middleware.
func recordEnvelopeOutcome(outcome string) {
	envelopeTransformsTotal.WithLabelValues(outcome).Inc()
}

// Metrics returns Prometheus metrics middleware
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
