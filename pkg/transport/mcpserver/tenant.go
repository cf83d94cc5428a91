package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sdkauth "github.com/modelcontextprotocol/go-sdk/auth"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/auth"
	"github.com/rhuss/vrmaction/pkg/debug"
	"github.com/rhuss/vrmaction/pkg/storage"
)

// Keys of sdkauth.TokenInfo.Extra set by IdentityVerifier.
const (
	extraTenantID    = "tenant_id"
	extraServiceTier = "service_tier"
)

// tokenLifetime bounds the token info derived from an identity. Identities
// are re-established on every HTTP request, so it only needs to outlive
// one request.
const tokenLifetime = 5 * time.Minute

// IdentityVerifier is an sdkauth.TokenVerifier that converts the identity
// placed in the request context by auth.Middleware into token info for the
// MCP layer. It never inspects the token itself.
func IdentityVerifier(_ context.Context, _ string, r *http.Request) (*sdkauth.TokenInfo, error) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		return nil, fmt.Errorf("%w: no authenticated identity", sdkauth.ErrInvalidToken)
	}
	return &sdkauth.TokenInfo{
		UserID:     id.Subject,
		Scopes:     id.Scopes,
		Expiration: time.Now().Add(tokenLifetime),
		Extra: map[string]any{
			extraTenantID:    id.TenantID(),
			extraServiceTier: id.ServiceTier,
		},
	}, nil
}

// Tenant returns middleware that scopes each MCP request to the tenant in
// its bearer token info. Requests without token info (stdio, auth disabled)
// run in the default tenant.
func Tenant() mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if tenant := tenantFromRequest(req); tenant != "" {
				ctx = storage.SetTenant(ctx, tenant)
				debug.Log("mcp", "request scoped to tenant", "method", method, "tenant", tenant)
			}
			return next(ctx, method, req)
		}
	}
}

func tenantFromRequest(req mcp.Request) string {
	if req == nil {
		return ""
	}
	extra := req.GetExtra()
	if extra == nil || extra.TokenInfo == nil {
		return ""
	}
	tenant, _ := extra.TokenInfo.Extra[extraTenantID].(string)
	return tenant
}
