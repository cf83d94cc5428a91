package mcpserver

import (
	"context"
	"net/http"
	"time"

	sdkauth "github.com/modelcontextprotocol/go-sdk/auth"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/auth"
	"github.com/rhuss/vrmaction/pkg/debug"
	"github.com/rhuss/vrmaction/pkg/observability"
	"github.com/rhuss/vrmaction/pkg/transport"
)

// readyTimeout bounds the storage health check behind /readyz.
const readyTimeout = 2 * time.Second

// HTTPConfig configures the streamable HTTP endpoint.
type HTTPConfig struct {
	// Path is the MCP endpoint, e.g. "/mcp".
	Path string

	// Stateless disables MCP session tracking.
	Stateless bool

	// Auth authenticates MCP requests. Nil disables authentication.
	Auth *auth.AuthChain

	// Limiter enforces per-tier request limits. Requires Auth.
	Limiter auth.RateLimiter

	// Ready reports readiness for /readyz, typically the storage health
	// check. Nil means always ready.
	Ready func(ctx context.Context) error

	// MetricsPath serves Prometheus metrics when non-empty.
	MetricsPath string
}

// NewHTTPHandler returns the HTTP handler for the streamable MCP transport
// plus health and metrics endpoints.
func NewHTTPHandler(server *mcp.Server, cfg HTTPConfig) http.Handler {
	if cfg.Path == "" {
		cfg.Path = "/mcp"
	}

	var mcpHandler http.Handler = mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return server },
		&mcp.StreamableHTTPOptions{Stateless: cfg.Stateless},
	)

	if cfg.Auth != nil {
		// Anonymous chains carry no bearer token to hand on.
		if len(cfg.Auth.Authenticators) > 0 {
			mcpHandler = sdkauth.RequireBearerToken(IdentityVerifier, nil)(mcpHandler)
		}
		mcpHandler = auth.Middleware(cfg.Auth, cfg.Limiter, nil)(mcpHandler)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, mcpHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := cfg.Ready(ctx); err != nil {
				debug.Log("storage", "readiness check failed", "error", err)
				transport.WriteErrorStatus(w, api.NewServerError("not ready: "+err.Error()), http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok\n"))
	})
	if cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return observability.MetricsMiddleware(mux)
}
