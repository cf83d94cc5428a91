package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rhuss/vrmaction/pkg/storage"
)

type identityKey struct{}

// WithIdentity returns a context carrying id and, when the identity names
// a tenant, the storage tenant that scopes the action history.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, id)
	if tenantID := id.TenantID(); tenantID != "" {
		ctx = storage.SetTenant(ctx, tenantID)
	}
	return ctx
}

// IdentityFromContext returns the authenticated identity, or nil when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// BearerToken extracts the token of a "Bearer" Authorization header. ok is
// false when the header is missing or uses another scheme, so that the
// caller can abstain. A bearer header with an empty token returns ok true.
func BearerToken(r *http.Request) (token string, ok bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}
