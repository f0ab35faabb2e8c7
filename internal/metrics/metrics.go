// Package metrics provides Prometheus metrics for the inspect server and the
// outbound transport.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Default histogram buckets for request latency.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metric collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	TransportDuration  *prometheus.HistogramVec
	TransportResponses *prometheus.CounterVec
	TransportErrors    *prometheus.CounterVec
	TransportBytes     prometheus.Counter
}

// New creates a Metrics instance with a custom registry and all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loom_http_server_requests_total",
			Help: "Total inbound HTTP requests.",
		}, []string{"method", "status_code", "path_prefix"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loom_http_server_request_duration_seconds",
			Help:    "Inbound HTTP request latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"method", "status_code", "path_prefix"}),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loom_http_server_requests_in_flight",
			Help: "Number of HTTP requests currently being processed.",
		}),

		TransportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loom_http_transport_duration_seconds",
			Help:    "Outbound transport call latency in seconds.",
			Buckets: defaultBuckets,
		}, []string{"method"}),

		TransportResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loom_http_transport_responses_total",
			Help: "Total transport responses by method and status code.",
		}, []string{"method", "status_code"}),

		TransportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loom_http_transport_errors_total",
			Help: "Total transport failures by method.",
		}, []string{"method"}),

		TransportBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "loom_http_transport_received_bytes_total",
			Help: "Raw response bytes (header block plus body) received by the transport.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.TransportDuration,
		m.TransportResponses,
		m.TransportErrors,
		m.TransportBytes,
	)

	return m
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label for Prometheus metrics.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

// knownPrefixes lists the allowed path label values (bounded cardinality).
var knownPrefixes = []string{"/inspect", "/healthz", "/status", "/metrics"}

// NormalizePath returns a bounded path label for Prometheus metrics.
func NormalizePath(path string) string {
	for _, prefix := range knownPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return prefix
		}
	}
	return "other"
}
