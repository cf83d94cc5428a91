// Package transport provides the cross-cutting layer between MCP clients and
// the vrmaction tool handlers.
//
// # Middleware
//
// Middleware wraps the MCP server's receiving method handler
// (mcp.Middleware). Built-in middleware assigns request IDs (honouring an
// X-Request-ID header on the HTTP transport), emits structured log entries
// via log/slog, records Prometheus tool metrics, and converts panics into
// server errors so that one failing call never takes down the process.
// Defaults returns the standard chain in the order it must be installed.
//
// # Errors
//
// HTTP-facing helpers map api.APIError types to status codes and write the
// JSON error envelope used by every non-MCP endpoint.
//
// The HTTP server lifecycle (listen, graceful shutdown) lives in the
// transport/http subpackage; tool registration lives in transport/mcpserver.
package transport
