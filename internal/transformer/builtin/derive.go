package builtin

import "github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"

// Derive adds calendar columns computed from TimeField: DateField gets the
// date component as "2006-01-02" and HourField the hour as an int in 0-23.
// Records whose TimeField is missing get nil derived cells.
type Derive struct {
	TimeField string
	DateField string
	HourField string
}

func (d Derive) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		t, ok := r.Time(d.TimeField)
		if !ok {
			r[d.DateField] = nil
			r[d.HourField] = nil
			continue
		}
		r[d.DateField] = t.Format("2006-01-02")
		r[d.HourField] = t.Hour()
	}
	return in
}
