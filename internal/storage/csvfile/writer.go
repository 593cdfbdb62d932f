// Package csvfile implements the primary sink: a delimited text file
// matching the input schema plus the derived columns. No row-index column is
// written; row order is whatever the pipeline produced.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// TimeLayout is the canonical timestamp form written to the output file.
const TimeLayout = "2006-01-02 15:04:05"

// Writer writes the cleaned table to a local CSV file.
type Writer struct{ path string }

// NewWriter returns a Writer bound to the given output path.
func NewWriter(path string) *Writer { return &Writer{path: path} }

// WriteAll creates (or truncates) the output file and writes the header
// followed by every record, cells aligned to the given column order.
func (w *Writer) WriteAll(ctx context.Context, columns []string, recs []records.Record) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	f, err := os.Create(w.path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", w.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	var written int64
	for _, rec := range recs {
		for i, col := range columns {
			row[i] = FormatCell(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return written, fmt.Errorf("write row: %w", err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", w.path, err)
	}
	return written, nil
}

// Close is a no-op; the file handle only lives for the duration of WriteAll.
func (w *Writer) Close() error { return nil }

// FormatCell renders one cell value for delimited output. Missing values
// (nil) become the empty string; floats use the shortest representation that
// round-trips; timestamps use TimeLayout.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case time.Time:
		return t.Format(TimeLayout)
	default:
		return fmt.Sprint(t)
	}
}
