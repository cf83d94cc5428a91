package transport

import (
	"context"
	"crypto/rand"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RequestIDHeader carries a caller-chosen request ID over HTTP.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds header-supplied IDs, which end up in every log
// line of the request.
const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestIDFromContext returns the request ID in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithRequestID returns a copy of ctx carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns middleware that gives every MCP request an ID. An ID
// already in the context is kept; otherwise a well-formed X-Request-ID
// header is used, and failing that a random ID is generated.
func RequestID() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if RequestIDFromContext(ctx) == "" {
				id := headerRequestID(req)
				if id == "" {
					id = rand.Text()
				}
				ctx = ContextWithRequestID(ctx, id)
			}
			return next(ctx, method, req)
		}
	}
}

func headerRequestID(req mcp.Request) string {
	if req == nil {
		return ""
	}
	extra := req.GetExtra()
	if extra == nil {
		return ""
	}
	id := extra.Header.Get(RequestIDHeader)
	if !validRequestID(id) {
		return ""
	}
	return id
}

// validRequestID accepts short IDs of visible ASCII characters.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
