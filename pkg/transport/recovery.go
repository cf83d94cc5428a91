package transport

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/api"
)

// Recovery returns middleware that turns a panicking handler into a
// server error. The panic value and stack are logged, not returned.
func Recovery() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (result mcp.Result, err error) {
			defer func() {
				if p := recover(); p != nil {
					slog.ErrorContext(ctx, "panic in MCP handler",
						"method", method,
						"tool", ToolName(method, req),
						"request_id", RequestIDFromContext(ctx),
						"panic", p,
						"stack", string(debug.Stack()),
					)
					result, err = nil, api.NewServerError("internal server error")
				}
			}()
			return next(ctx, method, req)
		}
	}
}
