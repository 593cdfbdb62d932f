// Package storage contains storage-agnostic contracts for writing the
// cleaned table, plus a small factory that maps configuration onto a
// concrete backend. Backend-specific code lives in subpackages so the rest
// of the program never imports database drivers directly.
package storage

import (
	"context"
	"fmt"

	"github.com/rupendra-bukke/test-vehicle-analytics/internal/storage/csvfile"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/storage/postgres"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/storage/sqlite"
	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// Repository is the minimal sink interface used by the CLI. WriteAll writes
// the full cleaned table in one call, aligned to the given column order, and
// returns the number of rows written.
type Repository interface {
	WriteAll(ctx context.Context, columns []string, recs []records.Record) (int64, error)
	Close() error
}

// Config selects and configures a concrete backend.
type Config struct {
	Kind  string // "csv", "sqlite", or "postgres"
	Path  string // csv: output file path
	DSN   string // sqlite: database path; postgres: pgxpool connection string
	Table string // sqlite/postgres: destination table
}

// New constructs the Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	switch cfg.Kind {
	case "csv":
		return csvfile.NewWriter(cfg.Path), nil
	case "sqlite":
		return sqlite.NewRepository(ctx, sqlite.Config{DSN: cfg.DSN, Table: cfg.Table})
	case "postgres":
		return postgres.NewRepository(ctx, postgres.Config{DSN: cfg.DSN, Table: cfg.Table})
	default:
		return nil, fmt.Errorf("unsupported storage kind %q", cfg.Kind)
	}
}
