// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the vrmaction server.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vrmaction"

// LatencyBuckets spans 0.5ms to 1s. Composition is in-process, so anything
// slower is an outlier worth seeing in the +Inf bucket.
var LatencyBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// Values for the source label of ActionsComposedTotal.
const (
	SourceTemplate = "template"
	SourceFallback = "fallback"
)

// Values for the kind label of UnresolvedTotal.
const (
	KindExpression = "expression"
	KindBone       = "bone"
)

// HTTP transport.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "HTTP requests by status code and method.",
	}, []string{"code", "method"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by method.",
		Buckets:   LatencyBuckets,
	}, []string{"method"})

	StreamingConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "streaming_connections_active",
		Help:      "Open SSE streams.",
	})

	RateLimitRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratelimit_rejected_total",
		Help:      "Requests rejected by the rate limiter, by tier.",
	}, []string{"tier"})
)

// MCP tools and the action engine.
var (
	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "MCP tool calls by tool and outcome.",
	}, []string{"tool", "status"})

	ToolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tool_call_duration_seconds",
		Help:      "MCP tool call duration by tool.",
		Buckets:   LatencyBuckets,
	}, []string{"tool"})

	ActionsComposedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_composed_total",
		Help:      "Composed actions by whether a template or the fallback produced them.",
	}, []string{"source"})

	// UnresolvedTotal counts template expressions and bones dropped because
	// the model had no matching name.
	UnresolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unresolved_total",
		Help:      "Template references the model could not resolve.",
	}, []string{"kind"})
)
