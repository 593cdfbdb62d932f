package transformer

import "github.com/rupendra-bukke/test-vehicle-analytics/pkg/records"

// Transformer mutates or filters a batch of records and returns the result.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
