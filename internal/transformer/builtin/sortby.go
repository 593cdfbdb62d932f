package builtin

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// SortBy orders records ascending by the composite key formed from Keys.
// The sort is stable: records with fully equal keys retain their relative
// input order. Missing key values order after present ones.
type SortBy struct {
	Keys []string
}

func (s SortBy) Apply(in []records.Record) []records.Record {
	if len(s.Keys) == 0 {
		return in
	}
	sort.SliceStable(in, func(i, j int) bool {
		for _, k := range s.Keys {
			switch compareValues(in[i][k], in[j][k]) {
			case -1:
				return true
			case 1:
				return false
			}
		}
		return false
	})
	return in
}

// compareValues orders two cell values: -1, 0, or 1. nil sorts last. Values
// of the same type compare natively; mixed types fall back to their string
// forms so the ordering stays total and deterministic.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			if av.Before(bv) {
				return -1
			}
			if av.After(bv) {
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			if av < bv {
				return -1
			}
			if av > bv {
				return 1
			}
			return 0
		}
	case int:
		if bv, ok := b.(int); ok {
			if av < bv {
				return -1
			}
			if av > bv {
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
