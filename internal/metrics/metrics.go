package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seasworthai"

// Upstream call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Collector owns a private registry so tests can build many servers.
//
// Metrics:
//   - seasworthai_http_requests_total: inbound requests by endpoint and status
//   - seasworthai_http_request_duration_seconds: inbound latency by endpoint
//   - seasworthai_upstream_requests_total: upstream calls by service and outcome
//   - seasworthai_upstream_request_duration_seconds: upstream latency by service
type Collector struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		upstreamTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of calls to upstream services",
			},
			[]string{"service", "outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Duration of upstream calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service"},
		),
	}

	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.upstreamTotal,
		c.upstreamDuration,
	)
	return c
}

// RecordRequest records a served inbound request.
func (c *Collector) RecordRequest(endpoint string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordUpstream records one call to an upstream service.
func (c *Collector) RecordUpstream(service, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.upstreamTotal.WithLabelValues(service, outcome).Inc()
	c.upstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// Handler returns the Prometheus exposition endpoint for this collector.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
