package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ComplaintsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Complaints filed, by category",
		},
		[]string{"category"},
	)

	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_transitions_total",
			Help: "Committed status changes, by target status and acting role",
		},
		[]string{"status", "role"},
	)

	FeedbackSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_feedback_submitted_total",
			Help: "Feedback attached to resolved complaints, by rating",
		},
		[]string{"rating"},
	)

	AuthorizationDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_authorization_denied_total",
			Help: "Operations rejected by the complaint policy",
		},
		[]string{"operation", "role"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			ComplaintsCreated,
			StatusTransitions,
			FeedbackSubmitted,
			AuthorizationDenied,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
