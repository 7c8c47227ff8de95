// Package metrics exposes Prometheus counters for the blog.
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
	// HTTPRequests counts handled requests by route, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tagpress_http_requests_total",
		Help: "HTTP requests handled, by route, method and status code.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tagpress_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// CommentsSubmitted counts comment submissions by outcome (created, invalid, error).
	CommentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tagpress_comments_submitted_total",
		Help: "Comment submissions by outcome.",
	}, []string{"result"})

	// SharesSent counts share emails by outcome (sent, not_sent, invalid).
	SharesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tagpress_post_shares_total",
		Help: "Post share emails by outcome.",
	}, []string{"result"})
)

// Middleware records request counters for every matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
