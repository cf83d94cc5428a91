package transport

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MethodToolsCall is the MCP method name of a tool invocation.
const MethodToolsCall = "tools/call"

// Defaults returns the standard receiving middleware in installation order:
// the first entry is the outermost wrapper. Recovery sits innermost so that
// logging and metrics observe a recovered panic as an ordinary error.
func Defaults(logger *slog.Logger) []mcp.Middleware {
	return []mcp.Middleware{
		RequestID(),
		Logging(logger),
		Metrics(),
		Recovery(),
	}
}

// ToolName returns the tool name of a tools/call request, or "" for any
// other method.
func ToolName(method string, req mcp.Request) string {
	if method != MethodToolsCall || req == nil {
		return ""
	}
	if p, ok := req.GetParams().(*mcp.CallToolParamsRaw); ok && p != nil {
		return p.Name
	}
	return ""
}

// toolFailed reports whether a tools/call produced a protocol error or a
// tool error result.
func toolFailed(result mcp.Result, err error) bool {
	if err != nil {
		return true
	}
	res, ok := result.(*mcp.CallToolResult)
	return ok && res != nil && res.IsError
}
