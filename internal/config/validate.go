// This file adds a lightweight linter/validator for Pipeline values. It
// performs static checks over a decoded Pipeline and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be
	// surfaced to users but may not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "clean.dedupe.policy"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
// Run ApplyDefaults first so that defaulted fields are not reported.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateClean(p.Clean)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateStorage(p.Storage)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
		return issues
	}

	// Unknown kinds are warnings for forward compatibility.
	if s.Kind != "file" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		})
	}

	if s.Kind == "file" && strings.TrimSpace(s.File.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.file.path",
			Message:  "file source requires a non-empty path",
		})
	}

	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
		return issues
	}
	if p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only \"csv\" is implemented", p.Kind),
		})
	}

	pat := p.Options.String("scrub_pattern", "")
	repl := p.Options.String("scrub_replacement", "")
	if pat == "" && repl != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.scrub_replacement",
			Message:  "scrub_replacement set without scrub_pattern; it will be ignored",
		})
	}

	return issues
}

func validateClean(c Clean) []Issue {
	var issues []Issue

	if c.ValueColumn == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "clean.value_column",
			Message:  "value_column must not be empty",
		})
	}
	if c.GroupColumn == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "clean.group_column",
			Message:  "group_column must not be empty",
		})
	}
	if c.FilterColumn == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "clean.filter_column",
			Message:  "filter_column must not be empty",
		})
	}

	switch c.Dedupe.Policy {
	case "", "keep-first", "keep-last", "most-complete":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "clean.dedupe.policy",
			Message:  fmt.Sprintf("unknown dedupe policy %q (want keep-first, keep-last, or most-complete)", c.Dedupe.Policy),
		})
	}
	if len(c.Dedupe.Keys) == 0 && (c.Dedupe.Policy != "" || len(c.Dedupe.PreferFields) > 0) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "clean.dedupe.keys",
			Message:  "dedupe options set but keys is empty; de-duplication is disabled",
		})
	}

	return issues
}

func validateOutput(o Output) []Issue {
	if strings.TrimSpace(o.Path) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path must not be empty",
		}}
	}
	return nil
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch s.Kind {
	case "", "none":
		return nil
	case "sqlite", "postgres":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q (want none, sqlite, or postgres)", s.Kind),
		})
		return issues
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  fmt.Sprintf("%s storage requires a non-empty dsn", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  fmt.Sprintf("%s storage requires a non-empty table", s.Kind),
		})
	}

	return issues
}
