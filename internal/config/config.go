// Package config defines the JSON-serializable configuration model for the
// vehicle-signal cleaning pipeline. It is intentionally small, explicit, and
// dependency-free so that pipeline files can be loaded from disk and passed
// through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":    "vehicle_signals",
//	  "source": { "kind": "file", "file": { "path": "data/vehicle_signal_raw.csv" } },
//	  "parser": { "kind": "csv", "options": { "has_header": true } },
//	  "output": { "path": "data/vehicle_signal_transformed.csv" },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "clean.db", "table": "vehicle_signals" } }
//	}
package config

import "encoding/json"

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run; it is used for metrics labeling.
	Job string `json:"job"`

	// Source describes where input data comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser"`

	// Clean configures the cleaning stages. Zero value reproduces the
	// default vehicle-signal behavior; see ApplyDefaults.
	Clean Clean `json:"clean"`

	// Output is the cleaned CSV destination.
	Output Output `json:"output"`

	// Storage optionally mirrors the cleaned table to a database.
	Storage Storage `json:"storage"`
}

// Source identifies the data source. Current kind: "file".
type Source struct {
	Kind string     `json:"kind"`
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`
}

// Parser selects how to parse the raw source into rows. Current kind: "csv".
type Parser struct {
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys: has_header (bool), comma (string), trim_space
	// (bool), header_map (object), scrub_pattern / scrub_replacement (string).
	Options Options `json:"options"`
}

// Clean configures the cleaning stages applied between parse and write.
type Clean struct {
	// TimeColumns are coerced to timestamps; unparsable cells become missing.
	TimeColumns []string `json:"time_columns"`

	// ValueColumn is coerced to float64 and median-imputed per group.
	ValueColumn string `json:"value_column"`

	// GroupColumn scopes the median imputation (e.g. "signal_name").
	GroupColumn string `json:"group_column"`

	// FilterColumn names the timestamp column whose absence drops the row.
	FilterColumn string `json:"filter_column"`

	// SortKeys order the output; missing keys sort last.
	SortKeys []string `json:"sort_keys"`

	// Normalize trims whitespace on all string cells before coercion.
	// Defaults to true.
	Normalize *bool `json:"normalize,omitempty"`

	// Dedupe optionally collapses duplicate rows before imputation.
	// Disabled when Keys is empty.
	Dedupe Dedupe `json:"dedupe"`
}

// Dedupe configures the optional de-duplication stage.
type Dedupe struct {
	Keys         []string `json:"keys"`
	Policy       string   `json:"policy"` // keep-first | keep-last | most-complete
	PreferFields []string `json:"prefer_fields"`
}

// Output is the cleaned CSV destination.
type Output struct {
	Path string `json:"path"`
}

// Storage selects an optional database mirror for the cleaned table.
type Storage struct {
	// Kind selects the mirror backend: "none" (default), "sqlite", "postgres".
	Kind string `json:"kind"`
	DB   DB     `json:"db"`
}

// DB configures the database mirror.
type DB struct {
	// DSN is the connection string: a file path for sqlite, a
	// postgresql:// URL for postgres.
	DSN string `json:"dsn"`

	// Table is the destination table name.
	Table string `json:"table"`
}

// ApplyDefaults fills zero-valued Clean fields with the vehicle-signal
// defaults so that a config carrying only paths reproduces the stock
// behavior.
func ApplyDefaults(p *Pipeline) {
	if p.Job == "" {
		p.Job = "vehicle_signals"
	}
	if p.Source.Kind == "" {
		p.Source.Kind = "file"
	}
	if p.Parser.Kind == "" {
		p.Parser.Kind = "csv"
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	c := &p.Clean
	if len(c.TimeColumns) == 0 {
		c.TimeColumns = []string{"event_time", "ingestion_time"}
	}
	if c.ValueColumn == "" {
		c.ValueColumn = "signal_value"
	}
	if c.GroupColumn == "" {
		c.GroupColumn = "signal_name"
	}
	if c.FilterColumn == "" {
		c.FilterColumn = "event_time"
	}
	if len(c.SortKeys) == 0 {
		c.SortKeys = []string{"vehicle_id", "trip_id", "event_time"}
	}
	if c.Normalize == nil {
		t := true
		c.Normalize = &t
	}
	if p.Storage.Kind == "" {
		p.Storage.Kind = "none"
	}
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It performs only
// minimal type coercion and returns provided defaults when a key is absent or
// of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Useful for single-character settings such as a CSV
// delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object decodes to a non-nil, empty Options map. This removes the
// need to nil-check Options values at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
