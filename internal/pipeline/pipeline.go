// Package pipeline orchestrates the vehicle-signal cleaning stages in their
// fixed order: whitespace normalization, timestamp coercion, numeric
// coercion, row filtering, optional de-duplication, per-signal median
// imputation, derived-column computation, and deterministic ordering.
//
// The run is single-threaded and whole-table: each stage consumes the output
// of the previous one. Cell-level problems never raise; they degrade to
// missing values and are counted in the Report. The only fatal condition
// before I/O is a schema failure (a required column absent from the header).
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/rupendra-bukke/test-vehicle-analytics/internal/config"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/metrics"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/transformer"
	"github.com/rupendra-bukke/test-vehicle-analytics/internal/transformer/builtin"
	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// Derived column names appended by the pipeline.
const (
	DateColumn = "date"
	HourColumn = "hour"
)

// Pipeline executes the cleaning stages for one job.
type Pipeline struct {
	Job   string
	Clean config.Clean
}

// New constructs a Pipeline from a job name and cleaning configuration.
func New(job string, clean config.Clean) *Pipeline {
	return &Pipeline{Job: job, Clean: clean}
}

// Run cleans the table and returns the output column order, the cleaned
// rows, and a diagnostics Report. The input slice is consumed: stage outputs
// are new values and callers must not reuse the argument afterwards.
//
// Run fails only when a required column is absent from the input header.
func (p *Pipeline) Run(columns []string, rows []records.Record) ([]string, []records.Record, *Report, error) {
	if err := p.checkSchema(columns); err != nil {
		return nil, nil, nil, err
	}

	rep := &Report{
		RowsIn:       len(rows),
		MissingTimes: make(map[string]int, len(p.Clean.TimeColumns)),
	}

	// 0) Optional whitespace normalization ahead of coercion.
	if p.Clean.Normalize == nil || *p.Clean.Normalize {
		rows = p.step("normalize", builtin.Normalize{}, rows)
	}

	// 1) Timestamp coercion: unparsable cells become missing, counted.
	rows = p.step("coerce_time", builtin.CoerceTime{
		Fields:    p.Clean.TimeColumns,
		OnMissing: func(field string) { rep.MissingTimes[field]++ },
	}, rows)

	// 2) Numeric coercion on the signal value.
	rows = p.step("coerce_value", builtin.CoerceFloat{
		Fields:    []string{p.Clean.ValueColumn},
		OnMissing: func(string) { rep.MissingValues++ },
	}, rows)

	// 3) Row filtering: a row without a usable event timestamp cannot serve
	// any temporal analysis and is discarded rather than imputed.
	rows = p.step("filter", builtin.Require{
		Fields: []string{p.Clean.FilterColumn},
		OnDrop: func(records.Record) { rep.RowsDropped++ },
	}, rows)

	// 4) Optional de-duplication.
	if len(p.Clean.Dedupe.Keys) > 0 {
		before := len(rows)
		rows = p.step("dedupe", builtin.DeDup{
			Keys:         p.Clean.Dedupe.Keys,
			Policy:       p.Clean.Dedupe.Policy,
			PreferFields: p.Clean.Dedupe.PreferFields,
		}, rows)
		rep.Deduped = before - len(rows)
	}

	// 5) Per-signal median imputation, strictly scoped to the group.
	rows = p.step("impute", builtin.ImputeMedian{
		GroupField: p.Clean.GroupColumn,
		ValueField: p.Clean.ValueColumn,
		OnImpute: func(signal string, median float64, filled int) {
			rep.Imputations = append(rep.Imputations, Imputation{Signal: signal, Median: median, Filled: filled})
		},
	}, rows)

	// 6) Derived calendar columns from the (now valid) filter timestamp.
	rows = p.step("derive", builtin.Derive{
		TimeField: p.Clean.FilterColumn,
		DateField: DateColumn,
		HourField: HourColumn,
	}, rows)

	// 7) Deterministic ordering with stable tie-breaking.
	rows = p.step("sort", builtin.SortBy{Keys: p.Clean.SortKeys}, rows)

	outCols := appendDerived(columns)
	rep.RowsOut = len(rows)
	rep.Columns = outCols

	metrics.RecordRow(p.Job, "processed", int64(rep.RowsIn))
	metrics.RecordRow(p.Job, "dropped_invalid_time", int64(rep.RowsDropped))
	metrics.RecordRow(p.Job, "deduped", int64(rep.Deduped))
	metrics.RecordRow(p.Job, "cleaned", int64(rep.RowsOut))

	return outCols, rows, rep, nil
}

// step applies one transformer and records its duration under the stage name.
func (p *Pipeline) step(name string, t transformer.Transformer, rows []records.Record) []records.Record {
	start := time.Now()
	out := t.Apply(rows)
	metrics.RecordStep(p.Job, name, nil, time.Since(start))
	return out
}

// checkSchema verifies that every column the cleaning stages reference is
// present in the input header.
func (p *Pipeline) checkSchema(columns []string) error {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}

	var missing []string
	for _, c := range p.requiredColumns() {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("input schema missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// requiredColumns returns the deduplicated union of every column the
// configured stages touch, in a stable order.
func (p *Pipeline) requiredColumns() []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(c string) {
		if c == "" {
			return
		}
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range p.Clean.SortKeys {
		add(c)
	}
	for _, c := range p.Clean.TimeColumns {
		add(c)
	}
	add(p.Clean.FilterColumn)
	add(p.Clean.GroupColumn)
	add(p.Clean.ValueColumn)
	return out
}

// appendDerived appends the derived column names to the input column list,
// skipping any that the input already carries.
func appendDerived(columns []string) []string {
	out := make([]string, 0, len(columns)+2)
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		out = append(out, c)
		seen[c] = struct{}{}
	}
	for _, c := range []string{DateColumn, HourColumn} {
		if _, ok := seen[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
