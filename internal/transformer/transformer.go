// Package transformer defines the row-level steps that run between parsing
// and loading.
package transformer

// Table is a parsed file: normalized headers and typed rows aligned to them.
type Table struct {
	Headers []string
	Rows    [][]any
}

// Transformer rewrites a Table. Implementations must not modify the input
// rows slice; they return a new one when rows are dropped or changed.
type Transformer interface {
	Name() string
	Apply(Table) Table
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order. If observe is non-nil it is called
// after each step with the row counts before and after it.
func (c Chain) Apply(in Table, observe func(name string, before, after int)) Table {
	out := in
	for _, t := range c {
		before := len(out.Rows)
		out = t.Apply(out)
		if observe != nil {
			observe(t.Name(), before, len(out.Rows))
		}
	}
	return out
}
