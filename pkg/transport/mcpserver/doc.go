// Package mcpserver exposes the action engine as Model Context Protocol
// tools and serves them over stdio or streamable HTTP.
//
// Tool errors (validation failures, missing capabilities, unknown history
// IDs) are reported as tool results with isError set, carrying the
// api.APIError text, so a bad call never terminates the session.
//
// On the HTTP transport, requests pass the auth chain first; the resulting
// identity is handed to the MCP layer as bearer token info, which scopes the
// action history to the caller's tenant and pins sessions to their subject.
package mcpserver
