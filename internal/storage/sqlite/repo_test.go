package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(context.Background(), Config{
		DSN:   filepath.Join(t.TempDir(), "clean.db"),
		Table: "vehicle_signals",
	})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewRepositoryValidation(t *testing.T) {
	if _, err := NewRepository(context.Background(), Config{Table: "t"}); err == nil {
		t.Fatalf("empty DSN should fail")
	}
	if _, err := NewRepository(context.Background(), Config{DSN: "x.db"}); err == nil {
		t.Fatalf("empty table should fail")
	}
}

func TestWriteAllRoundTrip(t *testing.T) {
	repo := openTestRepo(t)

	cols := []string{"vehicle_id", "event_time", "signal_value", "hour"}
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	recs := []records.Record{
		{"vehicle_id": "V1", "event_time": ts, "signal_value": 30.0, "hour": 8},
		{"vehicle_id": "V2", "event_time": ts, "signal_value": nil, "hour": 8},
	}

	n, err := repo.WriteAll(context.Background(), cols, recs)
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted=%d want 2", n)
	}

	var count int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM "vehicle_signals"`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count=%d want 2", count)
	}

	var vehicle, eventTime string
	var value float64
	row := repo.db.QueryRow(`SELECT "vehicle_id", "event_time", "signal_value" FROM "vehicle_signals" WHERE "vehicle_id" = 'V1'`)
	if err := row.Scan(&vehicle, &eventTime, &value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if eventTime != "2024-03-01 08:00:00" {
		t.Fatalf("event_time=%q", eventTime)
	}
	if value != 30 {
		t.Fatalf("signal_value=%v", value)
	}
}

func TestWriteAllReplacesContents(t *testing.T) {
	repo := openTestRepo(t)
	cols := []string{"vehicle_id"}

	if _, err := repo.WriteAll(context.Background(), cols, []records.Record{
		{"vehicle_id": "V1"}, {"vehicle_id": "V2"},
	}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := repo.WriteAll(context.Background(), cols, []records.Record{
		{"vehicle_id": "V3"},
	}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	var count int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM "vehicle_signals"`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rewrite should replace contents, count=%d", count)
	}
}

func TestWriteAllEmptyColumns(t *testing.T) {
	repo := openTestRepo(t)
	if _, err := repo.WriteAll(context.Background(), nil, nil); err == nil {
		t.Fatalf("empty column list should fail")
	}
}
