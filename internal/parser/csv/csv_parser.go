// Package csv implements a streaming CSV parser with optional, targeted
// on-the-fly scrubbing for known bad byte sequences in real-world feeds. It
// avoids whole-file buffering and can handle very large inputs safely.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical keys. Only applies
	// when HasHeader is true. Headers without a mapping are normalized to
	// lowercase ASCII identifiers (see NormalizeFieldName).
	HeaderMap map[string]string

	// ScrubPattern, when non-empty, enables a streaming find/replace that
	// rewrites every occurrence of the pattern to ScrubReplacement before the
	// bytes reach encoding/csv. This uses a small rolling carry and never
	// buffers the whole file. When enabled, the CSV reader is configured in a
	// lenient mode (LazyQuotes, variable field count) and the parser then
	// enforces the header width after read.
	ScrubPattern     string
	ScrubReplacement string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// streamingRewriter is an io.Reader that performs a streaming, rolling
// find/replace: it replaces all occurrences of pat with repl without
// buffering the entire stream. To correctly match sequences that may span
// chunk boundaries, it retains the last len(pat)-1 bytes (carry) from each
// processed block and prepends them to the next block before replacement.
type streamingRewriter struct {
	br    *bufio.Reader
	pat   []byte
	repl  []byte
	carry []byte       // last len(pat)-1 bytes retained between reads
	buf   bytes.Buffer // pending output to satisfy Read
	eof   bool
}

// newStreamingRewriter wraps r with a rewriter that replaces pat with repl.
func newStreamingRewriter(r io.Reader, pat, repl []byte) *streamingRewriter {
	capacity := 0
	if n := len(pat) - 1; n > 0 {
		capacity = n
	}
	return &streamingRewriter{
		br:    bufio.NewReaderSize(r, 64*1024),
		pat:   pat,
		repl:  repl,
		carry: make([]byte, 0, capacity),
	}
}

// Read implements io.Reader. It fills p from the internal buffer; when empty,
// it reads the next chunk from the underlying reader, performs rolling
// replacement, and withholds the trailing len(pat)-1 bytes as carry for the
// next call. On EOF it flushes the remaining carry.
func (sr *streamingRewriter) Read(p []byte) (int, error) {
	if sr.buf.Len() > 0 {
		return sr.buf.Read(p)
	}
	if sr.eof {
		return 0, io.EOF
	}

	tmp := make([]byte, 64*1024)
	n, rerr := sr.br.Read(tmp)
	if n > 0 {
		block := tmp[:n]

		// Prepend carry to handle cross-boundary matches.
		if len(sr.carry) > 0 {
			joined := make([]byte, 0, len(sr.carry)+len(block))
			joined = append(joined, sr.carry...)
			joined = append(joined, block...)
			block = joined
		}

		if len(sr.pat) > 0 && !bytes.Equal(sr.pat, sr.repl) {
			block = bytes.ReplaceAll(block, sr.pat, sr.repl)
		}

		// Retain the last k bytes as new carry; emit the rest.
		k := len(sr.pat) - 1
		if k < 0 {
			k = 0
		}
		if k > 0 && len(block) > k {
			emit := block[:len(block)-k]
			sr.buf.Write(emit)
			sr.carry = append(sr.carry[:0], block[len(block)-k:]...)
		} else {
			// Not enough to safely emit; keep entire block in carry.
			sr.carry = append(sr.carry[:0], block...)
		}
	}

	if rerr == io.EOF {
		// Flush any remaining carry; no further reads will occur.
		if len(sr.carry) > 0 {
			sr.buf.Write(sr.carry)
			sr.carry = sr.carry[:0]
		}
		sr.eof = true
	} else if rerr != nil {
		return 0, rerr
	}

	if sr.buf.Len() > 0 {
		return sr.buf.Read(p)
	}
	if sr.eof {
		return 0, io.EOF
	}

	// No data yet; upper layers will call Read again.
	return 0, nil
}

// Parse consumes CSV records from r and returns the canonical header, the
// parsed rows, and the number of rows that were skipped due to parse errors
// or field-count mismatches. Empty cells become nil values (missing). The
// input is never buffered whole; when ScrubPattern is set, an on-the-fly
// rewriter fixes the configured bad sequence.
func (p *Parser) Parse(r io.Reader) ([]string, []records.Record, int, error) {
	if p.opt.ScrubPattern != "" {
		r = newStreamingRewriter(r, []byte(p.opt.ScrubPattern), []byte(p.opt.ScrubReplacement))
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}

	// When scrubbing, relax csv.Reader so it doesn't abort early on residual
	// quoting oddities; width is still enforced after reading each row.
	if p.opt.ScrubPattern != "" {
		cr.LazyQuotes = true
		cr.FieldsPerRecord = -1
	}

	var headers []string
	var out []records.Record
	var skipped int

	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	}

	const logLimit = 400
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < logLimit {
				// Soft-fail this row and continue.
				log.Printf("skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}

		if len(headers) == 0 {
			// No header row: synthesize col_N names from the first data row.
			headers = make([]string, len(row))
			for i := range headers {
				headers[i] = fmt.Sprintf("col_%d", i)
			}
		}

		// Enforce expected width.
		if len(row) != len(headers) {
			if skipped < logLimit {
				log.Printf("skipping row %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		out = append(out, rec)
	}

	return headers, out, skipped, nil
}

// emptyToNil converts an empty string to nil; all other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and NormalizeFieldName otherwise. It also strips a UTF-8 BOM
// from the first cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = NormalizeFieldName(c)
	}
	return res
}
