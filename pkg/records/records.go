// Package records defines the row type shared by the parser, transformers,
// and storage sinks. A Record is one parsed CSV row keyed by canonical column
// name. Values are strings as parsed from the file, or typed values
// (time.Time, float64) after coercion. A nil value marks a missing cell.
package records

import "time"

// Record is one row of the table, keyed by column name.
type Record map[string]any

// Time returns the value for key as a time.Time when present and typed,
// otherwise the zero time and false.
func (r Record) Time(key string) (time.Time, bool) {
	if v, ok := r[key]; ok {
		if t, ok := v.(time.Time); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Float returns the value for key as a float64 when present and typed,
// otherwise 0 and false.
func (r Record) Float(key string) (float64, bool) {
	if v, ok := r[key]; ok {
		if f, ok := v.(float64); ok {
			return f, true
		}
	}
	return 0, false
}

// String returns the value for key as a string when present and typed,
// otherwise "" and false.
func (r Record) String(key string) (string, bool) {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// Missing reports whether key is absent or holds a nil value.
func (r Record) Missing(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// Clone returns a shallow copy of the record. Cell values are immutable
// (strings, numbers, times), so a shallow copy is a safe new row.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
