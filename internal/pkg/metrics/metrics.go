// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campusphere"

// Selection fetch outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
	OutcomeDiscarded = "discarded"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	SelectionFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "selection_fetches_total",
		Help:      "Semester fetches by outcome.",
	}, []string{"outcome"})

	SelectionFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "selection_fetch_duration_seconds",
		Help:      "Time spent fetching a semester's records.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "selection_sessions_active",
		Help:      "Live selection sessions.",
	})

	GradeCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grade_calculations_total",
		Help:      "GPA/CGPA calculations by kind and result.",
	}, []string{"kind", "result"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the rate limiter.",
	})
)

// ObserveFetch records a finished semester fetch.
func ObserveFetch(outcome string, elapsed time.Duration) {
	SelectionFetches.WithLabelValues(outcome).Inc()
	SelectionFetchDuration.Observe(elapsed.Seconds())
}

// ObserveGrade records a GPA ("gpa") or CGPA ("cgpa") calculation.
func ObserveGrade(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "undefined"
	}
	GradeCalculations.WithLabelValues(kind, result).Inc()
}

// Middleware counts requests per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
