package pipeline

// Imputation records the outcome of median imputation for one signal group.
type Imputation struct {
	Signal string
	Median float64
	Filled int
}

// Report carries the diagnostic counters produced by a cleaning run.
// Formatting and printing are the caller's responsibility.
type Report struct {
	RowsIn  int
	RowsOut int

	// MissingTimes counts, per timestamp column, cells that were missing
	// after coercion (arrived empty or failed to parse).
	MissingTimes map[string]int

	// MissingValues counts value-column cells missing after numeric coercion.
	MissingValues int

	// RowsDropped counts rows removed for a missing filter-column timestamp.
	RowsDropped int

	// Deduped counts rows removed by the optional de-duplication stage.
	Deduped int

	// Imputations lists per-signal imputation outcomes in first-appearance
	// order. Groups with an undefined median are omitted.
	Imputations []Imputation

	// Columns is the final output column list, in write order.
	Columns []string
}

// RowAccountingOK verifies the conservation invariant
//
//	rows_out == rows_in - rows_dropped - rows_deduped
//
// Imputation and derivation never add or remove rows.
func (r *Report) RowAccountingOK() bool {
	return r.RowsOut == r.RowsIn-r.RowsDropped-r.Deduped
}
