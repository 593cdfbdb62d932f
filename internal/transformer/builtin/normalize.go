package builtin

import (
	"strings"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// Normalize trims surrounding whitespace on every string cell. A cell that
// trims down to the empty string becomes missing (nil).
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(s)
				if s == "" {
					r[k] = nil
				} else {
					r[k] = s
				}
			}
		}
	}
	return in
}
