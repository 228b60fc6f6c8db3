package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wee"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	shortens       *prometheus.CounterVec
	redirects      *prometheus.CounterVec
	failures       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	exhausted      prometheus.Gauge
}

// New creates and registers the collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		shortens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shorten_total",
			Help:      "Successful shorten requests by outcome.",
		}, []string{"outcome"}),
		redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirect_total",
			Help:      "Resolved redirects by lookup source.",
		}, []string{"source"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failure_total",
			Help:      "Failed requests by operation and error class.",
		}, []string{"operation", "class"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by operation and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		exhausted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocator_exhausted",
			Help:      "1 once the shard id range is used up.",
		}),
	}

	m.registry.MustRegister(
		m.shortens,
		m.redirects,
		m.failures,
		m.requestLatency,
		m.exhausted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Shortened counts a successful shorten request.
func (m *Metrics) Shortened(outcome string) {
	m.shortens.WithLabelValues(outcome).Inc()
}

// Redirected counts a resolved redirect.
func (m *Metrics) Redirected(source string) {
	m.redirects.WithLabelValues(source).Inc()
}

// Failed counts a failed operation.
func (m *Metrics) Failed(operation, class string) {
	m.failures.WithLabelValues(operation, class).Inc()
}

// Exhausted flags the allocator as out of ids.
func (m *Metrics) Exhausted() {
	m.exhausted.Set(1)
}

// Middleware records the latency of every huma operation.
func (m *Metrics) Middleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()

	next(ctx)

	operation := "unknown"
	if op := ctx.Operation(); op != nil && op.OperationID != "" {
		operation = op.OperationID
	}

	status := ctx.Status()
	if status == 0 {
		status = http.StatusOK
	}

	m.requestLatency.WithLabelValues(operation, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
