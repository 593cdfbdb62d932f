package builtin

import (
	"sort"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// ImputeMedian fills missing values in ValueField with the median of the
// valid values sharing the same GroupField. Imputation is scoped strictly to
// the group: values are never borrowed across groups. A group with zero valid
// values has an undefined median and its missing cells are left untouched.
// Records whose GroupField is itself missing belong to no group and are never
// filled.
type ImputeMedian struct {
	GroupField string
	ValueField string

	// OnImpute is invoked once per group whose median is defined, in the
	// group's first-appearance order, with the median used and the number of
	// cells filled (possibly zero). Optional.
	OnImpute func(group string, median float64, filled int)
}

func (m ImputeMedian) Apply(in []records.Record) []records.Record {
	// First pass: collect valid values per group, preserving the order in
	// which groups first appear so reporting is deterministic.
	valid := make(map[string][]float64)
	var order []string
	for _, r := range in {
		g, ok := r.String(m.GroupField)
		if !ok {
			continue
		}
		if _, seen := valid[g]; !seen {
			order = append(order, g)
			valid[g] = nil
		}
		if v, ok := r.Float(m.ValueField); ok {
			valid[g] = append(valid[g], v)
		}
	}

	medians := make(map[string]float64, len(valid))
	for g, vals := range valid {
		if len(vals) == 0 {
			continue // undefined median, group stays as-is
		}
		medians[g] = median(vals)
	}

	// Second pass: fill missing cells from the group median.
	filled := make(map[string]int, len(medians))
	for _, r := range in {
		g, ok := r.String(m.GroupField)
		if !ok {
			continue
		}
		med, defined := medians[g]
		if !defined || !r.Missing(m.ValueField) {
			continue
		}
		r[m.ValueField] = med
		filled[g]++
	}

	if m.OnImpute != nil {
		for _, g := range order {
			if med, defined := medians[g]; defined {
				m.OnImpute(g, med, filled[g])
			}
		}
	}
	return in
}

// median computes the standard statistical median: the middle value for an
// odd count, the mean of the two middle values for an even count. The input
// slice is not modified.
func median(vals []float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	n := len(cp)
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}
