// Package postgres stores action history in PostgreSQL through a pgx
// connection pool. The action body is kept as JSONB beside indexed tenant,
// type and creation time columns.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/storage"
)

const uniqueViolation = "23505"

const selectActions = "SELECT id, action_type, intensity, action, created_at FROM actions"

// Store implements storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// New connects to the database described by cfg and, if requested,
// migrates the schema before returning.
func New(ctx context.Context, cfg Config) (*Store, error) {
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.init(ctx, cfg.MigrateOnStart); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context, migrate bool) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if !migrate {
		return nil
	}
	if err := s.migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// query accumulates WHERE conditions and their positional arguments.
type query struct {
	conds []string
	args  []any
}

// arg binds v and returns its placeholder.
func (q *query) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *query) where(format string, v ...any) {
	q.conds = append(q.conds, fmt.Sprintf(format, v...))
}

// scoped returns a query limited to the tenant in ctx, if any.
func scoped(ctx context.Context) *query {
	q := &query{}
	if tenant := storage.GetTenant(ctx); tenant != "" {
		q.where("tenant_id = %s", q.arg(tenant))
	}
	return q
}

func (q *query) sql(base, suffix string) string {
	var b strings.Builder
	b.WriteString(base)
	if len(q.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.conds, " AND "))
	}
	b.WriteString(suffix)
	return b.String()
}

// SaveAction inserts action under the tenant in ctx.
func (s *Store) SaveAction(ctx context.Context, action *api.StoredAction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO actions (id, tenant_id, action_type, intensity, action, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		action.ID, storage.GetTenant(ctx), action.ActionType, action.Intensity,
		action.Action, action.CreatedAt,
	)
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return storage.ErrConflict
	case err != nil:
		return fmt.Errorf("inserting action: %w", err)
	}
	return nil
}

// GetAction returns the action with id if the tenant in ctx owns it.
func (s *Store) GetAction(ctx context.Context, id string) (*api.StoredAction, error) {
	q := scoped(ctx)
	q.where("id = %s", q.arg(id))

	rows, err := s.pool.Query(ctx, q.sql(selectActions, ""), q.args...)
	if err != nil {
		return nil, fmt.Errorf("querying action: %w", err)
	}
	action, err := pgx.CollectExactlyOneRow(rows, scanAction)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying action: %w", err)
	}
	return action, nil
}

// ListActions pages through the tenant's actions ordered by creation
// time. A cursor the tenant cannot see yields an empty page.
func (s *Store) ListActions(ctx context.Context, opts storage.ListOptions) (*api.ActionList, error) {
	opts = opts.Normalize()
	page := &api.ActionList{Object: "list", Data: []*api.StoredAction{}}

	q := scoped(ctx)
	if opts.ActionType != "" {
		q.where("action_type = %s", q.arg(opts.ActionType))
	}

	asc := opts.Order == "asc"
	if cursor := opts.After + opts.Before; cursor != "" {
		createdAt, seq, err := s.position(ctx, cursor)
		if errors.Is(err, storage.ErrNotFound) {
			return page, nil
		}
		if err != nil {
			return nil, err
		}
		// After moves with the sort order, Before against it.
		op := "<"
		if asc == (opts.After != "") {
			op = ">"
		}
		q.where("(created_at, seq) %s (%s, %s)", op, q.arg(createdAt), q.arg(seq))
	}

	dir := "DESC"
	if asc {
		dir = "ASC"
	}
	suffix := fmt.Sprintf(" ORDER BY created_at %[1]s, seq %[1]s LIMIT %s", dir, q.arg(opts.Limit+1))

	rows, err := s.pool.Query(ctx, q.sql(selectActions, suffix), q.args...)
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	data, err := pgx.CollectRows(rows, scanAction)
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}

	if len(data) > opts.Limit {
		page.HasMore = true
		data = data[:opts.Limit]
	}
	if len(data) > 0 {
		page.Data = data
		page.FirstID = data[0].ID
		page.LastID = data[len(data)-1].ID
	}
	return page, nil
}

// position returns the sort key of the action with id, or
// storage.ErrNotFound when the tenant in ctx cannot see it.
func (s *Store) position(ctx context.Context, id string) (createdAt, seq int64, err error) {
	q := scoped(ctx)
	q.where("id = %s", q.arg(id))

	err = s.pool.QueryRow(ctx, q.sql("SELECT created_at, seq FROM actions", ""), q.args...).Scan(&createdAt, &seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("resolving cursor: %w", err)
	}
	return createdAt, seq, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool. It always returns nil.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// scanAction reads one selectActions row. The JSONB column decodes
// straight into the action record.
func scanAction(row pgx.CollectableRow) (*api.StoredAction, error) {
	var a api.StoredAction
	if err := row.Scan(&a.ID, &a.ActionType, &a.Intensity, &a.Action, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
