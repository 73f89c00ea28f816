package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alertship",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "alertship",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	placesCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "alertship",
		Name:      "places_calls_total",
		Help:      "Outbound places/geocoding provider calls by operation and outcome.",
	}, []string{"op", "outcome"})

	reportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "alertship",
		Name:      "outage_reports_created_total",
		Help:      "Outage reports persisted.",
	})
)

// Middleware records request counts and latency per templated route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) }
}

// RecordPlacesCall counts one provider round trip.
func RecordPlacesCall(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	placesCalls.WithLabelValues(op, outcome).Inc()
}

// RecordReportCreated counts one persisted report.
func RecordReportCreated() { reportsCreated.Inc() }
