package transport

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/observability"
)

// Tool call outcomes recorded in the status label of ToolCallsTotal.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics returns middleware that records vrmaction_tool_calls_total and
// vrmaction_tool_call_duration_seconds for every tools/call request.
func Metrics() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			tool := ToolName(method, req)
			if tool == "" {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			status := StatusOK
			if toolFailed(result, err) {
				status = StatusError
			}
			observability.ToolCallsTotal.WithLabelValues(tool, status).Inc()
			observability.ToolCallDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())

			return result, err
		}
	}
}
