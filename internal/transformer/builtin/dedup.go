// DeDup is the policy-driven de-duplication transformer. It collapses
// duplicate records by a configured key and chooses a winner according to a
// configurable policy:
//
//   - "keep-first"   : keep the earliest occurrence in the batch
//   - "keep-last"    : keep the latest occurrence in the batch (default)
//   - "most-complete": keep the record that has the most non-missing fields;
//     ties break by "keep-last"
//
// It runs in-memory on a single batch of records. For stable semantics run
// DeDup after Normalize/coercion so that types and empty values are
// consistent.
//
// Keys: a record's key is the xxh3 hash of the concatenation of the
// configured fields (nil encoded as \x00, fields separated by \x1f).

package builtin

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the field names that form the business key,
	// e.g. ["vehicle_id","trip_id","event_time","signal_name"].
	Keys []string

	// Policy selects the winner among duplicates: "keep-first", "keep-last",
	// or "most-complete" (default "keep-last").
	Policy string

	// PreferFields optionally lists fields that weigh more heavily in
	// "most-complete" selection; present values in these fields add an extra
	// weight. Ties still break by keep-last.
	PreferFields []string
}

// Apply executes the de-duplication and returns a new slice containing only
// the winning records for each key, in ascending position of the winning
// occurrence. Records missing a key field are outside the de-dup domain and
// are appended unchanged in their original order.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		rec   records.Record
		index int // original position in input
		score int // completeness score (for most-complete)
	}

	winners := make(map[uint64]slot, len(in))

	prefer := make(map[string]struct{}, len(d.PreferFields))
	for _, f := range d.PreferFields {
		prefer[f] = struct{}{}
	}

	keyOf := func(r records.Record) (uint64, bool) {
		var b strings.Builder
		for _, k := range d.Keys {
			v, ok := r[k]
			if !ok {
				// Missing key field: record is outside the de-dup domain.
				return 0, false
			}
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			switch t := v.(type) {
			case nil:
				b.WriteByte('\x00')
			case string:
				b.WriteString(t)
			case time.Time:
				b.WriteString(t.Format(time.RFC3339Nano))
			default:
				b.WriteString(fmt.Sprint(t))
			}
		}
		return xxh3.HashString(b.String()), true
	}

	scoreOf := func(r records.Record) int {
		score := 0
		bonus := 0
		for k, v := range r {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			score++
			if _, ok := prefer[k]; ok {
				bonus++
			}
		}
		return score*10 + bonus
	}

	for i, r := range in {
		key, ok := keyOf(r)
		if !ok {
			continue
		}
		switch policy {
		case "keep-first":
			if _, exists := winners[key]; !exists {
				winners[key] = slot{rec: r, index: i}
			}
		case "most-complete":
			s := slot{rec: r, index: i, score: scoreOf(r)}
			if prev, exists := winners[key]; !exists {
				winners[key] = s
			} else if s.score > prev.score || (s.score == prev.score && s.index > prev.index) {
				winners[key] = s
			}
		default: // keep-last
			winners[key] = slot{rec: r, index: i}
		}
	}

	// Winners in ascending position of the winning occurrence, then the
	// non-keyed pass-through records in original order.
	slots := make([]slot, 0, len(winners))
	for _, s := range winners {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].index < slots[j].index })

	out := make([]records.Record, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.rec)
	}
	for _, r := range in {
		if _, ok := keyOf(r); !ok {
			out = append(out, r)
		}
	}
	return out
}
