package builtin

import "github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"

// Require removes any record missing a value for any of the specified fields.
type Require struct {
	Fields []string

	// OnDrop is invoked once per removed record. Optional.
	OnDrop func(rec records.Record)
}

// Apply returns a filtered slice containing only records that have all
// required fields present and non-nil.
func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		ok := true
		for _, f := range r.Fields {
			v, exists := rec[f]
			if !exists || v == nil {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
			continue
		}
		if r.OnDrop != nil {
			r.OnDrop(rec)
		}
	}
	return out
}
