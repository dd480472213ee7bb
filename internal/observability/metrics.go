package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecipeMutations counts recipe mutations by operation and outcome kind.
	RecipeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchenkin_recipe_mutations_total",
		Help: "Total number of recipe mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	// CollaboratorLatency records remote collaborator call latency.
	CollaboratorLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kitchenkin_collaborator_latency_seconds",
		Help:    "Latency of image ingestion, image deletion and allergen detection calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"collaborator", "outcome"})

	// RemoteCleanupFailures counts swallowed remote image deletion failures.
	RemoteCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kitchenkin_remote_cleanup_failures_total",
		Help: "Total number of remote image deletions that failed and were ignored",
	})

	// SessionCacheLookups counts session cache hits and misses.
	SessionCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchenkin_session_cache_lookups_total",
		Help: "Session cache lookups by result",
	}, []string{"result"})

	// HTTPRequestDuration records request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kitchenkin_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveCollaborator records the latency of a remote call started at start.
func ObserveCollaborator(collaborator string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CollaboratorLatency.WithLabelValues(collaborator, outcome).Observe(time.Since(start).Seconds())
}

// GinMiddleware records HTTPRequestDuration for every request.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
