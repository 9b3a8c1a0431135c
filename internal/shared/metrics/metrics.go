package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobmatch"

var (
	registry = prometheus.NewRegistry()

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resume_uploads_total",
		Help:      "Resume uploads by terminal outcome",
	}, []string{"outcome"})

	uploadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resume_upload_duration_seconds",
		Help:      "End-to-end resume upload duration in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	embeddingCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_requests_total",
		Help:      "Embedding provider calls by mode and outcome",
	}, []string{"mode", "outcome"})

	embeddingTruncations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "embedding_truncations_total",
		Help:      "Texts truncated before embedding",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		uploadsTotal,
		uploadDuration,
		embeddingCalls,
		embeddingTruncations,
		httpRequests,
	)
}

// ObserveUpload records the terminal outcome and duration of an upload.
func ObserveUpload(outcome string, d time.Duration) {
	uploadsTotal.WithLabelValues(outcome).Inc()
	uploadDuration.Observe(d.Seconds())
}

// IncEmbeddingCall counts an embedding provider call.
func IncEmbeddingCall(mode, outcome string) {
	embeddingCalls.WithLabelValues(mode, outcome).Inc()
}

// IncEmbeddingTruncation counts a text cut to the character budget.
func IncEmbeddingTruncation() {
	embeddingTruncations.Inc()
}

// Middleware counts requests per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return gin.WrapH(h)
}

// Registry returns the registry backing Handler, for tests.
func Registry() *prometheus.Registry {
	return registry
}
