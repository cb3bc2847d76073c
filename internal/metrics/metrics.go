package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flashclip"

// Metrics holds the service collectors on a dedicated registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	clipsCreated    prometheus.Counter
	clipsRetrieved  *prometheus.CounterVec
	clipsConsumed   prometheus.Counter
	clipsNotFound   prometheus.Counter
	storeErrors     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors, including the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		clipsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clips_created_total",
			Help:      "Clips successfully created.",
		}),
		clipsRetrieved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clips_retrieved_total",
			Help:      "Clips successfully retrieved.",
		}, []string{"read_once"}),
		clipsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clips_consumed_total",
			Help:      "Read-once clips deleted after their first retrieval.",
		}),
		clipsNotFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clips_not_found_total",
			Help:      "Retrievals of absent, expired or consumed clips.",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed store operations.",
		}, []string{"op"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.clipsCreated,
		m.clipsRetrieved,
		m.clipsConsumed,
		m.clipsNotFound,
		m.storeErrors,
		m.requestDuration,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request latency by method and status
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// ClipCreated counts a stored clip
func (m *Metrics) ClipCreated() {
	if m != nil {
		m.clipsCreated.Inc()
	}
}

// ClipRetrieved counts a served clip, labelled by whether it was read-once
func (m *Metrics) ClipRetrieved(readOnce bool) {
	if m != nil {
		m.clipsRetrieved.WithLabelValues(strconv.FormatBool(readOnce)).Inc()
	}
}

// ClipConsumed counts a read-once clip removed by its first view
func (m *Metrics) ClipConsumed() {
	if m != nil {
		m.clipsConsumed.Inc()
	}
}

// ClipNotFound counts views of unknown, expired or already consumed ids
func (m *Metrics) ClipNotFound() {
	if m != nil {
		m.clipsNotFound.Inc()
	}
}

// StoreError counts a failed store operation; op is put, get, take, delete or id
func (m *Metrics) StoreError(op string) {
	if m != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}
