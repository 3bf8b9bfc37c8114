package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all the Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestSize      *prometheus.HistogramVec
	HTTPResponseSize     *prometheus.HistogramVec

	// MCP session metrics
	MCPSessionsActive  prometheus.Gauge
	MCPSessionsTotal   *prometheus.CounterVec
	MCPSessionDuration *prometheus.HistogramVec

	// Tool metrics
	MCPToolExecutions     *prometheus.CounterVec
	MCPToolDuration       *prometheus.HistogramVec
	MCPValidationFailures *prometheus.CounterVec
	ProviderCalls         *prometheus.CounterVec
	ProviderCallDuration  *prometheus.HistogramVec

	// System metrics
	GoRoutines  prometheus.Gauge
	MemoryUsage prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "Size of HTTP requests in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "Size of HTTP responses in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),

		MCPSessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mcp_sessions_active",
				Help: "Number of active MCP sessions",
			},
		),
		MCPSessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_sessions_total",
				Help: "Total number of MCP session lifecycle events",
			},
			[]string{"action"}, // created, deleted, expired
		),
		MCPSessionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcp_session_duration_seconds",
				Help:    "Duration of MCP sessions in seconds",
				Buckets: []float64{60, 300, 600, 1800, 3600, 7200},
			},
			[]string{"reason"}, // expired, deleted
		),

		MCPToolExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_tool_executions_total",
				Help: "Total number of MCP tool executions",
			},
			[]string{"tool_name", "status"}, // success, error
		),
		MCPToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mcp_tool_execution_duration_seconds",
				Help:    "Duration of MCP tool executions in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"tool_name"},
		),
		MCPValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mcp_tool_validation_failures_total",
				Help: "Total number of tool calls rejected by argument validation",
			},
			[]string{"tool_name"},
		),
		ProviderCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chain_provider_calls_total",
				Help: "Total number of chain data provider calls",
			},
			[]string{"operation", "status"},
		),
		ProviderCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chain_provider_call_duration_seconds",
				Help:    "Duration of chain data provider calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"operation"},
		),

		GoRoutines: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "go_goroutines_current",
				Help: "Number of goroutines that currently exist",
			},
		),
		MemoryUsage: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),
	}
}

// RecordHTTPRequest records metrics for an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// SetActiveSessions sets the active session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.MCPSessionsActive.Set(float64(n))
}

// RecordSessionCreated records a new session creation
func (m *Metrics) RecordSessionCreated() {
	m.MCPSessionsTotal.WithLabelValues("created").Inc()
}

// RecordSessionEnded records a session that was deleted or expired after living for duration.
func (m *Metrics) RecordSessionEnded(reason string, duration time.Duration) {
	m.MCPSessionsTotal.WithLabelValues(reason).Inc()
	m.MCPSessionDuration.WithLabelValues(reason).Observe(duration.Seconds())
}

// RecordToolExecution records a tool execution
func (m *Metrics) RecordToolExecution(toolName, status string, duration time.Duration) {
	m.MCPToolExecutions.WithLabelValues(toolName, status).Inc()
	m.MCPToolDuration.WithLabelValues(toolName).Observe(duration.Seconds())
}

// RecordValidationFailure counts a call rejected by schema validation.
func (m *Metrics) RecordValidationFailure(toolName string) {
	m.MCPValidationFailures.WithLabelValues(toolName).Inc()
}

// RecordProviderCall records one call to the chain data provider.
func (m *Metrics) RecordProviderCall(operation, status string, duration time.Duration) {
	m.ProviderCalls.WithLabelValues(operation, status).Inc()
	m.ProviderCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateSystemMetrics updates system-level metrics
func (m *Metrics) UpdateSystemMetrics(goroutines int, memoryBytes uint64) {
	m.GoRoutines.Set(float64(goroutines))
	m.MemoryUsage.Set(float64(memoryBytes))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
