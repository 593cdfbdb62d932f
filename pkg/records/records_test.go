package records

import (
	"testing"
	"time"
)

func TestAccessors(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	r := Record{
		"event_time":   ts,
		"signal_value": 48.5,
		"vehicle_id":   "V1",
		"note":         nil,
	}

	if got, ok := r.Time("event_time"); !ok || !got.Equal(ts) {
		t.Fatalf("Time: %v %v", got, ok)
	}
	if _, ok := r.Time("vehicle_id"); ok {
		t.Fatalf("Time should reject non-time values")
	}
	if got, ok := r.Float("signal_value"); !ok || got != 48.5 {
		t.Fatalf("Float: %v %v", got, ok)
	}
	if got, ok := r.String("vehicle_id"); !ok || got != "V1" {
		t.Fatalf("String: %v %v", got, ok)
	}
	if !r.Missing("note") || !r.Missing("absent") {
		t.Fatalf("nil and absent keys are both missing")
	}
	if r.Missing("vehicle_id") {
		t.Fatalf("present value reported missing")
	}
}

func TestClone(t *testing.T) {
	r := Record{"vehicle_id": "V1"}
	c := r.Clone()
	c["vehicle_id"] = "V2"
	if r["vehicle_id"] != "V1" {
		t.Fatalf("clone aliases the original")
	}
}
