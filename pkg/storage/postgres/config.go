package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config describes the database and its connection pool. Zero values
// select the defaults noted on each field.
type Config struct {
	DSN string

	MaxConns        int32         // 10
	MinConns        int32         // 1
	MaxConnLifetime time.Duration // 5m

	// MigrateOnStart applies pending schema migrations in New.
	MigrateOnStart bool
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	pc.MaxConns = orDefault(c.MaxConns, 10)
	pc.MinConns = orDefault(c.MinConns, 1)
	pc.MaxConnLifetime = orDefault(c.MaxConnLifetime, 5*time.Minute)
	return pc, nil
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
