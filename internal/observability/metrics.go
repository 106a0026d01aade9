package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookbook_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cookbook_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PolicyDenials counts server-side authorization refusals by action.
	PolicyDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cookbook_policy_denials_total",
		Help: "Total number of requests refused by the authorization policy",
	}, []string{"action"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ClientMetrics counts the API calls issued by the client. It lives in its
// own registry so a CLI invocation can dump exactly what it did.
type ClientMetrics struct {
	Registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewClientMetrics registers the client collectors in a fresh registry.
func NewClientMetrics() *ClientMetrics {
	reg := prometheus.NewRegistry()
	m := &ClientMetrics{
		Registry: reg,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cookbook_client_api_calls_total",
			Help: "API calls issued by the client by resource, method and outcome",
		}, []string{"resource", "method", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cookbook_client_api_call_seconds",
			Help:    "Latency of API calls issued by the client",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource", "method"}),
	}
	reg.MustRegister(m.calls, m.latency)
	return m
}

// Observe records one finished call. Outcome is "ok", "rejected" or "network".
func (m *ClientMetrics) Observe(resource, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(resource, method, outcome).Inc()
	m.latency.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

// WriteTextfile dumps the client registry in the Prometheus text format.
func (m *ClientMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
