// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the figaro service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// ExecBuckets defines histogram buckets suited for sandbox executions,
// which normally finish in well under a second.
var ExecBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}

var (
	// RequestsTotal counts all HTTP requests by method, path, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figaro_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "figaro_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "path"},
	)

	// ChartGenerationsTotal counts end-to-end chart pipeline runs by outcome.
	ChartGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figaro_chart_generations_total",
			Help: "Chart pipeline runs",
		},
		[]string{"status"},
	)

	// GeneratorRequestsTotal counts requests sent to the model backend.
	GeneratorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figaro_generator_requests_total",
			Help: "Model backend requests",
		},
		[]string{"provider", "operation", "status"},
	)

	// GeneratorLatency records model backend latency in seconds.
	GeneratorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "figaro_generator_latency_seconds",
			Help:    "Model backend latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "operation"},
	)

	// SandboxExecutionsTotal counts fragment executions by outcome.
	SandboxExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figaro_sandbox_executions_total",
			Help: "Sandbox fragment executions",
		},
		[]string{"status"},
	)

	// SandboxExecutionDuration records fragment execution duration in seconds.
	SandboxExecutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "figaro_sandbox_execution_duration_seconds",
			Help:    "Sandbox fragment execution duration",
			Buckets: ExecBuckets,
		},
	)

	// DatasetsLoaded counts datasets parsed from uploads.
	DatasetsLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "figaro_datasets_loaded_total",
			Help: "Datasets parsed from uploads",
		},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figaro_rate_limit_rejected_total",
			Help: "Requests rejected by rate limiting",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ChartGenerationsTotal,
		GeneratorRequestsTotal,
		GeneratorLatency,
		SandboxExecutionsTotal,
		SandboxExecutionDuration,
		DatasetsLoaded,
		RateLimitRejectedTotal,
	)
}
