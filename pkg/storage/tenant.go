package storage

import "context"

type tenantKey struct{}

// SetTenant returns a copy of ctx scoped to tenantID. Stores record new
// actions under this tenant and only return actions it owns.
func SetTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// GetTenant returns the tenant ctx is scoped to, or "" when the caller is
// unscoped (single-tenant deployments and stdio sessions).
func GetTenant(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantKey{}).(string)
	return tenantID
}

// TenantVisible reports whether a record owned by owner may be returned
// to the caller in ctx. Unscoped callers see every record.
func TenantVisible(ctx context.Context, owner string) bool {
	tenantID := GetTenant(ctx)
	return tenantID == "" || tenantID == owner
}
