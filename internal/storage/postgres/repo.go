// Package postgres implements a Postgres-backed mirror sink using pgx v5.
// It bulk-loads the cleaned table with COPY; the destination table must
// already exist with columns matching the cleaned schema.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// Config holds Postgres mirror configuration.
type Config struct {
	DSN   string // connection string for pgxpool
	Table string // target table name, optionally schema-qualified ("public.vehicle_signals")
}

// Repository is a Postgres-backed mirror sink.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository connects a pool for the configured DSN.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, nil
}

// WriteAll truncates the destination table and COPYs every record into it in
// one transaction, cells aligned to the given column order.
func (r *Repository) WriteAll(ctx context.Context, columns []string, recs []records.Record) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: WriteAll: columns must not be empty")
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "TRUNCATE "+pgFQN(r.cfg.Table)); err != nil {
		return 0, fmt.Errorf("postgres: truncate %s: %w", r.cfg.Table, err)
	}

	rows := make([][]any, len(recs))
	for i, rec := range recs {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		rows[i] = row
	}

	n, err := tx.CopyFrom(ctx, tableIdent(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy into %s: %w", r.cfg.Table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return n, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// tableIdent converts "schema.table" into a pgx.Identifier.
func tableIdent(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	out := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// pgFQN quotes each part of a possibly schema-qualified table name.
func pgFQN(fqn string) string {
	parts := tableIdent(fqn)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ".")
}
