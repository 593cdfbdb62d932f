package builtin

import (
	"testing"
	"time"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

func TestDerive(t *testing.T) {
	ts := time.Date(2024, 3, 1, 23, 45, 10, 0, time.UTC)
	in := []records.Record{{"event_time": ts}}

	d := Derive{TimeField: "event_time", DateField: "date", HourField: "hour"}
	out := d.Apply(in)

	if got := out[0]["date"]; got != "2024-03-01" {
		t.Fatalf("date=%#v want 2024-03-01", got)
	}
	if got := out[0]["hour"]; got != 23 {
		t.Fatalf("hour=%#v want 23", got)
	}
}

func TestDeriveMissingTime(t *testing.T) {
	in := []records.Record{{"event_time": nil}}
	d := Derive{TimeField: "event_time", DateField: "date", HourField: "hour"}
	out := d.Apply(in)
	if out[0]["date"] != nil || out[0]["hour"] != nil {
		t.Fatalf("derived cells should be nil when the source is missing: %#v", out[0])
	}
}
