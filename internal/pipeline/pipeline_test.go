package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/rupendra-bukke/test-vehicle-analytics/internal/config"
	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

var signalColumns = []string{
	"vehicle_id", "trip_id", "event_time", "ingestion_time", "signal_name", "signal_value",
}

func defaultClean() config.Clean {
	p := config.Pipeline{}
	config.ApplyDefaults(&p)
	return p.Clean
}

func signalRow(vehicle, trip, eventTime, signal string, value any) records.Record {
	return records.Record{
		"vehicle_id":     vehicle,
		"trip_id":        trip,
		"event_time":     eventTime,
		"ingestion_time": "2024-03-01 09:00:00",
		"signal_name":    signal,
		"signal_value":   value,
	}
}

func TestRunCleansSpeedBatch(t *testing.T) {
	// Five speed readings (one unparsable value) plus one row whose event
	// timestamp cannot be parsed at all.
	rows := []records.Record{
		signalRow("V1", "T1", "2024-03-01 08:00:00", "speed", "0"),
		signalRow("V1", "T1", "2024-03-01 08:01:00", "speed", "12"),
		signalRow("V1", "T1", "2024-03-01 08:02:00", "speed", "NaN"),
		signalRow("V1", "T1", "2024-03-01 08:03:00", "speed", "48"),
		signalRow("V1", "T1", "2024-03-01 08:04:00", "speed", "60"),
		signalRow("V1", "T1", "INVALID_TIME", "speed", "33"),
	}

	p := New("vehicle_signals", defaultClean())
	cols, out, rep, err := p.Run(signalColumns, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rep.RowsIn != 6 || rep.RowsOut != 5 || rep.RowsDropped != 1 {
		t.Fatalf("accounting: in=%d out=%d dropped=%d", rep.RowsIn, rep.RowsOut, rep.RowsDropped)
	}
	if !rep.RowAccountingOK() {
		t.Fatalf("row accounting violated: %+v", rep)
	}
	if rep.MissingTimes["event_time"] != 1 {
		t.Fatalf("missing event_time count=%d want 1", rep.MissingTimes["event_time"])
	}
	if rep.MissingValues != 1 {
		t.Fatalf("missing value count=%d want 1", rep.MissingValues)
	}

	// The NaN reading is replaced by the median of {0, 12, 48, 60} = 30.
	if len(rep.Imputations) != 1 {
		t.Fatalf("imputations: %+v", rep.Imputations)
	}
	imp := rep.Imputations[0]
	if imp.Signal != "speed" || imp.Median != 30 || imp.Filled != 1 {
		t.Fatalf("imputation: %+v", imp)
	}
	for _, r := range out {
		if r["signal_value"] == nil {
			t.Fatalf("speed row left unimputed: %#v", r)
		}
	}
	if v := out[2]["signal_value"]; v != 30.0 {
		t.Fatalf("imputed cell=%#v want 30", v)
	}

	// Derived columns appended after the input columns.
	want := append(append([]string{}, signalColumns...), DateColumn, HourColumn)
	if strings.Join(cols, ",") != strings.Join(want, ",") {
		t.Fatalf("columns: %v", cols)
	}
	for _, r := range out {
		ts := r["event_time"].(time.Time)
		if r[DateColumn] != ts.Format("2006-01-02") {
			t.Fatalf("date %v inconsistent with event_time %v", r[DateColumn], ts)
		}
		if r[HourColumn] != ts.Hour() {
			t.Fatalf("hour %v inconsistent with event_time %v", r[HourColumn], ts)
		}
	}
}

func TestRunSchemaFailure(t *testing.T) {
	p := New("vehicle_signals", defaultClean())
	_, _, _, err := p.Run([]string{"vehicle_id", "trip_id", "event_time"}, nil)
	if err == nil {
		t.Fatalf("missing columns should fail the run")
	}
	for _, col := range []string{"ingestion_time", "signal_name", "signal_value"} {
		if !strings.Contains(err.Error(), col) {
			t.Fatalf("error %q does not name %s", err, col)
		}
	}
}

func TestRunMissingIngestionTimeKeepsRow(t *testing.T) {
	rows := []records.Record{
		signalRow("V1", "T1", "2024-03-01 08:00:00", "speed", "10"),
	}
	rows[0]["ingestion_time"] = "not-a-time"

	p := New("vehicle_signals", defaultClean())
	_, out, rep, err := p.Run(signalColumns, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 || rep.RowsDropped != 0 {
		t.Fatalf("only event_time gates the row: out=%d dropped=%d", len(out), rep.RowsDropped)
	}
	if out[0]["ingestion_time"] != nil {
		t.Fatalf("unparsable ingestion_time should be missing, got %#v", out[0]["ingestion_time"])
	}
	if rep.MissingTimes["ingestion_time"] != 1 {
		t.Fatalf("missing ingestion_time count=%d want 1", rep.MissingTimes["ingestion_time"])
	}
}

func TestRunSortsByCompositeKey(t *testing.T) {
	rows := []records.Record{
		signalRow("V2", "T1", "2024-03-01 08:00:00", "speed", "1"),
		signalRow("V1", "T2", "2024-03-01 08:00:00", "speed", "2"),
		signalRow("V1", "T1", "2024-03-01 08:05:00", "speed", "3"),
		signalRow("V1", "T1", "2024-03-01 08:00:00", "speed", "4"),
	}

	p := New("vehicle_signals", defaultClean())
	_, out, _, err := p.Run(signalColumns, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []float64{4, 3, 2, 1}
	for i, w := range want {
		if out[i]["signal_value"] != w {
			t.Fatalf("pos %d: value=%v want %v", i, out[i]["signal_value"], w)
		}
	}
}

func TestRunDedupe(t *testing.T) {
	clean := defaultClean()
	clean.Dedupe = config.Dedupe{Keys: []string{"vehicle_id", "trip_id", "event_time", "signal_name"}}

	rows := []records.Record{
		signalRow("V1", "T1", "2024-03-01 08:00:00", "speed", "10"),
		signalRow("V1", "T1", "2024-03-01 08:00:00", "speed", "11"),
		signalRow("V1", "T1", "2024-03-01 08:01:00", "speed", "12"),
	}

	p := New("vehicle_signals", clean)
	_, out, rep, err := p.Run(signalColumns, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Deduped != 1 || len(out) != 2 {
		t.Fatalf("deduped=%d out=%d", rep.Deduped, len(out))
	}
	if !rep.RowAccountingOK() {
		t.Fatalf("row accounting violated: %+v", rep)
	}
	// keep-last by default: the 11 reading wins.
	if out[0]["signal_value"] != 11.0 {
		t.Fatalf("dedupe winner=%v want 11", out[0]["signal_value"])
	}
}

func TestRunEmptyInput(t *testing.T) {
	p := New("vehicle_signals", defaultClean())
	cols, out, rep, err := p.Run(signalColumns, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 0 || rep.RowsIn != 0 || rep.RowsOut != 0 {
		t.Fatalf("empty input: out=%d rep=%+v", len(out), rep)
	}
	if len(cols) != len(signalColumns)+2 {
		t.Fatalf("derived columns still appended on empty input: %v", cols)
	}
}

func TestRequiredColumnsUnion(t *testing.T) {
	p := New("vehicle_signals", defaultClean())
	got := p.requiredColumns()
	want := []string{"vehicle_id", "trip_id", "event_time", "ingestion_time", "signal_name", "signal_value"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("requiredColumns=%v want %v", got, want)
	}
}
