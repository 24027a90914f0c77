package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	publishOutcomes  *prometheus.CounterVec
	publishDuration  *prometheus.HistogramVec
	autoPauses       *prometheus.CounterVec
	platformFailures *prometheus.CounterVec
}

func NewCollector(serviceName, version string) *Collector {
	prefix := strings.ReplaceAll(serviceName, "-", "_")
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		publishOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_publish_outcomes_total",
			Help: "Publish requests by platform and outcome (posted, blocked, failed) and error kind",
		}, []string{"platform", "outcome", "kind"}),
		publishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_platform_call_duration_seconds",
			Help:    "Duration of platform publish calls",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"platform"}),
		autoPauses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_auto_pauses_total",
			Help: "Automatic platform pauses by source",
		}, []string{"platform", "source"}),
		platformFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_platform_failures_total",
			Help: "Platform publish failures by class",
		}, []string{"platform", "class"}),
	}

	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: prefix + "_service_info",
		Help: "Service information",
	}, []string{"version"})
	info.WithLabelValues(version).Set(1)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.publishOutcomes,
		c.publishDuration,
		c.autoPauses,
		c.platformFailures,
		info,
	)

	return c
}

func (c *Collector) ObservePublish(platform, outcome, kind string) {
	if c == nil {
		return
	}
	c.publishOutcomes.WithLabelValues(platform, outcome, kind).Inc()
}

func (c *Collector) ObservePlatformCall(platform string, took time.Duration) {
	if c == nil {
		return
	}
	c.publishDuration.WithLabelValues(platform).Observe(took.Seconds())
}

func (c *Collector) ObserveAutoPause(platform, source string) {
	if c == nil {
		return
	}
	c.autoPauses.WithLabelValues(platform, source).Inc()
}

func (c *Collector) ObservePlatformFailure(platform, class string) {
	if c == nil {
		return
	}
	c.platformFailures.WithLabelValues(platform, class).Inc()
}

// Middleware records request counts and latencies per route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, endpoint, status).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (c *Collector) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		handler.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
