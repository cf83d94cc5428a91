package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/debug"
)

// Logging returns middleware that emits structured log entries for each
// tool call. The entry includes the tool name, duration, request ID (from
// context), and whether the call succeeded or failed. Other MCP methods
// (initialize, tools/list, notifications) are logged only under the "mcp"
// debug category.
func Logging(logger *slog.Logger) mcp.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)

			tool := ToolName(method, req)
			if tool == "" {
				debug.Log("mcp", "method handled",
					"method", method,
					"request_id", RequestIDFromContext(ctx),
					"duration", time.Since(start),
					"error", err,
				)
				return result, err
			}

			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil {
				debug.Trace("mcp", "tool arguments", "tool", tool, "arguments", string(call.Params.Arguments))
			}

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("tool", tool),
				slog.Duration("duration", time.Since(start)),
			}

			switch {
			case err != nil:
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "tool call failed", attrs...)
			case toolFailed(result, nil):
				if res, ok := result.(*mcp.CallToolResult); ok {
					if terr := res.GetError(); terr != nil {
						attrs = append(attrs, slog.String("error", terr.Error()))
					}
				}
				logger.LogAttrs(ctx, slog.LevelWarn, "tool call rejected", attrs...)
			default:
				logger.LogAttrs(ctx, slog.LevelInfo, "tool call completed", attrs...)
			}

			return result, err
		}
	}
}
