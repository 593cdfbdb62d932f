package builtin

import (
	"testing"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

func sig(name string, v any) records.Record {
	return records.Record{"signal_name": name, "signal_value": v}
}

func TestImputeMedianEvenCount(t *testing.T) {
	// speed [0, 12, nil, 48, 60]: median of the four valid values is 30.
	in := []records.Record{
		sig("speed", 0.0),
		sig("speed", 12.0),
		sig("speed", nil),
		sig("speed", 48.0),
		sig("speed", 60.0),
	}

	var gotSignal string
	var gotMedian float64
	var gotFilled int
	m := ImputeMedian{
		GroupField: "signal_name",
		ValueField: "signal_value",
		OnImpute: func(signal string, median float64, filled int) {
			gotSignal, gotMedian, gotFilled = signal, median, filled
		},
	}
	out := m.Apply(in)

	if v, ok := out[2]["signal_value"].(float64); !ok || v != 30 {
		t.Fatalf("imputed value=%#v want 30", out[2]["signal_value"])
	}
	if gotSignal != "speed" || gotMedian != 30 || gotFilled != 1 {
		t.Fatalf("report: signal=%q median=%v filled=%d", gotSignal, gotMedian, gotFilled)
	}
	if len(out) != len(in) {
		t.Fatalf("imputation changed row count: %d -> %d", len(in), len(out))
	}
}

func TestImputeMedianOddCount(t *testing.T) {
	in := []records.Record{
		sig("soc", 10.0),
		sig("soc", 90.0),
		sig("soc", 20.0),
		sig("soc", nil),
	}
	m := ImputeMedian{GroupField: "signal_name", ValueField: "signal_value"}
	out := m.Apply(in)
	if v := out[3]["signal_value"]; v != 20.0 {
		t.Fatalf("odd-count median: got %#v want 20", v)
	}
}

func TestImputeMedianScopedToGroup(t *testing.T) {
	in := []records.Record{
		sig("speed", 100.0),
		sig("speed", 100.0),
		sig("temp", 20.0),
		sig("temp", nil),
	}
	m := ImputeMedian{GroupField: "signal_name", ValueField: "signal_value"}
	out := m.Apply(in)

	// temp's gap is filled from temp's own median, never from speed.
	if v := out[3]["signal_value"]; v != 20.0 {
		t.Fatalf("cross-group borrow: got %#v want 20", v)
	}
}

func TestImputeMedianUndefinedIsNoOp(t *testing.T) {
	in := []records.Record{
		sig("voltage", nil),
		sig("voltage", nil),
		sig("speed", 50.0),
	}
	called := map[string]bool{}
	m := ImputeMedian{
		GroupField: "signal_name",
		ValueField: "signal_value",
		OnImpute:   func(signal string, _ float64, _ int) { called[signal] = true },
	}
	out := m.Apply(in)

	if out[0]["signal_value"] != nil || out[1]["signal_value"] != nil {
		t.Fatalf("voltage rows should stay missing: %#v %#v", out[0]["signal_value"], out[1]["signal_value"])
	}
	if called["voltage"] {
		t.Fatalf("undefined median must not be reported")
	}
	if !called["speed"] {
		t.Fatalf("defined median should be reported even with zero fills")
	}
}

func TestImputeMedianMissingGroupName(t *testing.T) {
	in := []records.Record{
		sig("speed", 10.0),
		{"signal_name": nil, "signal_value": nil},
	}
	m := ImputeMedian{GroupField: "signal_name", ValueField: "signal_value"}
	out := m.Apply(in)
	if out[1]["signal_value"] != nil {
		t.Fatalf("record without a group must not be filled: %#v", out[1]["signal_value"])
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		in   []float64
		want float64
	}{
		{[]float64{1}, 1},
		{[]float64{1, 3}, 2},
		{[]float64{3, 1, 2}, 2},
		{[]float64{0, 12, 48, 60}, 30},
	}
	for _, c := range cases {
		if got := median(c.in); got != c.want {
			t.Fatalf("median(%v)=%v want %v", c.in, got, c.want)
		}
	}
}
