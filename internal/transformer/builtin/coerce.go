// Package builtin contains the reusable cleaning transformers.
package builtin

import (
	"math"
	"strconv"
	"time"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// DefaultTimeLayouts are the layouts CoerceTime tries in order. The first is
// the canonical telemetry form; the rest cover the common variants seen in
// upstream feeds.
var DefaultTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CoerceTime parses the configured fields as timestamps. A cell that does not
// match any layout becomes missing (nil) instead of raising an error; cells
// that already hold a time.Time are left untouched, so re-applying the
// transformer is a no-op.
type CoerceTime struct {
	Fields  []string
	Layouts []string // tried in order; DefaultTimeLayouts when empty

	// OnMissing is invoked once per cell that is missing after coercion,
	// whether it arrived empty or failed to parse. Optional.
	OnMissing func(field string)
}

func (c CoerceTime) Apply(in []records.Record) []records.Record {
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = DefaultTimeLayouts
	}
	for _, r := range in {
		for _, field := range c.Fields {
			v, ok := r[field]
			if !ok || v == nil {
				c.miss(field)
				continue
			}
			if _, already := v.(time.Time); already {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				r[field] = nil
				c.miss(field)
				continue
			}
			if t, ok := parseAny(s, layouts); ok {
				r[field] = t
				continue
			}
			r[field] = nil
			c.miss(field)
		}
	}
	return in
}

func (c CoerceTime) miss(field string) {
	if c.OnMissing != nil {
		c.OnMissing(field)
	}
}

func parseAny(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceFloat parses the configured fields as float64. Unparsable cells, NaN,
// and ±Inf become missing (nil); cells that already hold a float64 are left
// untouched.
type CoerceFloat struct {
	Fields []string

	// OnMissing is invoked once per cell that is missing after coercion.
	// Optional.
	OnMissing func(field string)
}

func (c CoerceFloat) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, field := range c.Fields {
			v, ok := r[field]
			if !ok || v == nil {
				c.miss(field)
				continue
			}
			if f, already := v.(float64); already {
				if math.IsNaN(f) || math.IsInf(f, 0) {
					r[field] = nil
					c.miss(field)
				}
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				r[field] = nil
				c.miss(field)
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				r[field] = nil
				c.miss(field)
				continue
			}
			r[field] = f
		}
	}
	return in
}

func (c CoerceFloat) miss(field string) {
	if c.OnMissing != nil {
		c.OnMissing(field)
	}
}
