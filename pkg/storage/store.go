package storage

import (
	"context"

	"github.com/rhuss/vrmaction/pkg/api"
)

// Pagination defaults shared by the adapters.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Store persists generated actions. Implementations scope every operation
// to the tenant found in the context (see GetTenant).
type Store interface {
	// SaveAction persists an action. Returns ErrConflict if the ID is taken.
	SaveAction(ctx context.Context, action *api.StoredAction) error

	// GetAction retrieves an action by ID. Returns ErrNotFound if it does
	// not exist for the current tenant.
	GetAction(ctx context.Context, id string) (*api.StoredAction, error)

	// ListActions returns a page of actions for the current tenant.
	ListActions(ctx context.Context, opts ListOptions) (*api.ActionList, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// ListOptions controls pagination and filtering of ListActions.
type ListOptions struct {
	After      string // Cursor: return actions after this ID.
	Before     string // Cursor: return actions before this ID.
	Limit      int    // Maximum number of actions (default 20, max 100).
	ActionType string // Filter by action type.
	Order      string // Sort order by creation time: "asc" or "desc" (default "desc").
}

// Normalize applies defaults and bounds to the options.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Order != "asc" {
		o.Order = "desc"
	}
	return o
}
