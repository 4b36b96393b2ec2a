package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/itam-dev/itam-store/internal/registry"
)

// Metrics collects the operational counters for the daemon.
type Metrics struct {
	mutationsTotal  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	watchSessions   prometheus.Gauge
}

// NewMetrics registers the collectors with the given registerer
// (prometheus.DefaultRegisterer in the daemon, a fresh registry in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itam",
			Name:      "mutations_total",
			Help:      "Total number of committed registry mutations by action",
		}, []string{"action"}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itam",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by path and status",
		}, []string{"path", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "itam",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		watchSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "itam",
			Name:      "watch_sessions",
			Help:      "Number of connected websocket change-feed clients",
		}),
	}
}

// Middleware records per-request counters and latency, keyed by route
// template so path cardinality stays bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestsTotal.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// ObserveRegistry consumes a registry subscription and counts mutations.
// Blocks until the channel closes; run it in its own goroutine.
func (m *Metrics) ObserveRegistry(events <-chan registry.Event) {
	for ev := range events {
		m.mutationsTotal.WithLabelValues(ev.Action).Inc()
	}
}
