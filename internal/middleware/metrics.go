package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "keta_http"

// Collector is a prometheus.Collector for the HTTP API.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

func NewMetricsCollector() *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "The number of handled HTTP requests.",
			}, []string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "The time taken to handle an HTTP request.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			}, []string{"method", "route"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "requests_in_flight",
				Help:      "The number of requests being handled.",
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.requestDuration.Describe(ch)
	c.inFlight.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.requestDuration.Collect(ch)
	c.inFlight.Collect(ch)
}

// Middleware records every request against the matched route. Requests
// that match no route are counted under "unmatched". A panicking handler is
// recorded as a 500 before the panic reaches the recovery middleware.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		c.inFlight.Inc()
		start := time.Now()

		defer func() {
			recovered := recover()
			c.inFlight.Dec()

			status := ctx.Writer.Status()
			if recovered != nil {
				status = http.StatusInternalServerError
			}

			route := ctx.FullPath()
			if route == "" {
				route = "unmatched"
			}

			method := ctx.Request.Method
			c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			if recovered != nil {
				panic(recovered)
			}
		}()

		ctx.Next()
	}
}
