package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the REST surface. A nil *Metrics records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rateLimits  prometheus.Counter
	proxyErrors *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "energy_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	rateLimits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "energy_http_rate_limited_total",
		Help: "Requests rejected by the per-client limiter.",
	})

	proxyErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_gateway_errors_total",
		Help: "Prediction gateway calls that got no upstream answer.",
	}, []string{"service", "reason"})

	reg.MustRegister(requests, duration, rateLimits, proxyErrors)

	return &Metrics{
		requests:    requests,
		duration:    duration,
		rateLimits:  rateLimits,
		proxyErrors: proxyErrors,
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) rateLimited() {
	if m == nil {
		return
	}
	m.rateLimits.Inc()
}

func (m *Metrics) proxyError(service, reason string) {
	if m == nil {
		return
	}
	m.proxyErrors.WithLabelValues(service, reason).Inc()
}

func (rs *RestfulServer) PrometheusHandler() gin.HandlerFunc {
	if rs.Gatherer == nil {
		return gin.WrapH(promhttp.Handler())
	}
	return gin.WrapH(promhttp.HandlerFor(rs.Gatherer, promhttp.HandlerOpts{}))
}
