package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics collects the Prometheus metrics of the analytics server. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	computationsTotal   *prometheus.CounterVec
	computationDuration *prometheus.HistogramVec
	cacheLookups        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	computations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_analytics_computations_total",
		Help: "Analytics computations by operation and outcome.",
	}, []string{"operation", "outcome"})
	computationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_analytics_computation_duration_seconds",
		Help:    "Time spent computing analytics, ledger read included.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_analytics_cache_lookups_total",
		Help: "Analytics cache lookups by operation and result.",
	}, []string{"operation", "result"})

	registry.MustRegister(requests, duration, computations, computationDuration, cacheLookups)
	return &Metrics{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:       requests,
		requestDuration:     duration,
		computationsTotal:   computations,
		computationDuration: computationDuration,
		cacheLookups:        cacheLookups,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and latency of every request handled by gin.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveComputation records one analytics computation.
func (m *Metrics) ObserveComputation(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.computationsTotal.WithLabelValues(operation, outcome).Inc()
	m.computationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCacheLookup(operation string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}
