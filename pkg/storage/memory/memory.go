// Package memory keeps action history in process memory. It suits tests,
// stdio sessions and single-replica deployments; history does not survive
// a restart. A size bound evicts the least recently used action.
package memory

import (
	"cmp"
	"container/list"
	"context"
	"slices"
	"sync"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/storage"
)

type entry struct {
	action *api.StoredAction
	tenant string
	seq    uint64 // insertion order, breaks CreatedAt ties
	elem   *list.Element
}

// position orders entries by creation time, then insertion.
func (e *entry) position(o *entry) int {
	if c := cmp.Compare(e.action.CreatedAt, o.action.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(e.seq, o.seq)
}

// Store implements storage.Store. The zero value is not usable; call New.
type Store struct {
	mu      sync.Mutex
	byID    map[string]*entry
	recency *list.List // of *entry, most recent at the front
	limit   int
	seq     uint64
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store holding at most limit actions. A limit of 0
// or less disables eviction.
func New(limit int) *Store {
	return &Store{
		byID:    make(map[string]*entry),
		recency: list.New(),
		limit:   limit,
	}
}

// SaveAction stores action under the tenant in ctx, evicting the least
// recently used action when the store is full.
func (s *Store) SaveAction(ctx context.Context, action *api.StoredAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byID[action.ID]; dup {
		return storage.ErrConflict
	}
	for s.limit > 0 && len(s.byID) >= s.limit {
		s.evict()
	}

	s.seq++
	e := &entry{action: action, tenant: storage.GetTenant(ctx), seq: s.seq}
	e.elem = s.recency.PushFront(e)
	s.byID[action.ID] = e
	return nil
}

// GetAction returns the action with id if the tenant in ctx may see it,
// and marks it as recently used.
func (s *Store) GetAction(ctx context.Context, id string) (*api.StoredAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(ctx, id)
	if e == nil {
		return nil, storage.ErrNotFound
	}
	s.recency.MoveToFront(e.elem)
	return e.action, nil
}

// ListActions pages through the tenant's actions ordered by creation
// time. A cursor the tenant cannot see yields an empty page.
func (s *Store) ListActions(ctx context.Context, opts storage.ListOptions) (*api.ActionList, error) {
	opts = opts.Normalize()
	page := &api.ActionList{Object: "list", Data: []*api.StoredAction{}}

	asc := opts.Order == "asc"
	order := func(a, b *entry) int {
		if asc {
			return a.position(b)
		}
		return b.position(a)
	}

	s.mu.Lock()
	var cursor *entry
	if id := opts.After + opts.Before; id != "" {
		if cursor = s.lookup(ctx, id); cursor == nil {
			s.mu.Unlock()
			return page, nil
		}
	}
	var matches []*entry
	for _, e := range s.byID {
		if !storage.TenantVisible(ctx, e.tenant) {
			continue
		}
		if opts.ActionType != "" && e.action.ActionType != opts.ActionType {
			continue
		}
		if cursor != nil {
			c := order(e, cursor)
			if (opts.After != "" && c <= 0) || (opts.Before != "" && c >= 0) {
				continue
			}
		}
		matches = append(matches, e)
	}
	s.mu.Unlock()

	slices.SortFunc(matches, order)

	if len(matches) > opts.Limit {
		page.HasMore = true
		matches = matches[:opts.Limit]
	}
	for _, e := range matches {
		page.Data = append(page.Data, e.action)
	}
	if n := len(page.Data); n > 0 {
		page.FirstID = page.Data[0].ID
		page.LastID = page.Data[n-1].ID
	}
	return page, nil
}

// HealthCheck implements storage.Store; memory is always healthy.
func (s *Store) HealthCheck(context.Context) error { return nil }

// Close implements storage.Store.
func (s *Store) Close() error { return nil }

// Len returns the number of stored actions across all tenants.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// lookup returns the entry for id if ctx may see it. s.mu must be held.
func (s *Store) lookup(ctx context.Context, id string) *entry {
	e, ok := s.byID[id]
	if !ok || !storage.TenantVisible(ctx, e.tenant) {
		return nil
	}
	return e
}

// evict drops the least recently used entry. s.mu must be held.
func (s *Store) evict() {
	back := s.recency.Back()
	if back == nil {
		return
	}
	e := s.recency.Remove(back).(*entry)
	delete(s.byID, e.action.ID)
}
