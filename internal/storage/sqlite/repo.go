// Package sqlite implements a SQLite-backed mirror sink using database/sql.
// It performs batched INSERTs inside a transaction; SQLite has no dedicated
// bulk-load API like Postgres COPY, but a single transaction keeps
// performance acceptable for the volumes a batch cleaner produces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// Config holds SQLite mirror configuration.
type Config struct {
	// DSN is passed directly to database/sql, e.g. "clean.db" or
	// "file:clean.db?cache=shared".
	DSN string

	// Table is the destination table name. It is created on first write if
	// it does not exist.
	Table string
}

// Repository is a SQLite-backed mirror sink.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Ping with a short timeout to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, nil
}

// WriteAll replaces the destination table's contents with the given records
// inside a single transaction: create-if-missing, delete existing rows,
// prepared multi-row INSERT.
func (r *Repository) WriteAll(ctx context.Context, columns []string, recs []records.Record) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: WriteAll: columns must not be empty")
	}

	// Untyped columns: SQLite column affinity NONE preserves the Go-side
	// types the driver binds (text, real, integer).
	create := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %q (%s)",
		r.cfg.Table,
		strings.Join(quoteAll(columns), ", "),
	)

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insert := fmt.Sprintf(
		"INSERT INTO %q (%s) VALUES (%s)",
		r.cfg.Table,
		strings.Join(quoteAll(columns), ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: create table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q", r.cfg.Table)); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	args := make([]any, len(columns))
	for _, rec := range recs {
		for i, col := range columns {
			args[i] = bindValue(rec[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close releases the underlying connection.
func (r *Repository) Close() error { return r.db.Close() }

// bindValue converts a record cell into a driver-friendly value. Timestamps
// are stored in their canonical text form; everything else binds natively.
func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return v
}

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = fmt.Sprintf("%q", c)
	}
	return out
}
