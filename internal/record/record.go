// Package record zips normalized headers with typed CSV values into ordered
// column→value rows and offers the small matrix helpers the loader needs.
package record

import (
	"csvload/internal/loaderr"
)

// Row is an ordered mapping from column name to scalar value. Column order is
// the header order of the file it came from.
type Row struct {
	keys  []string
	vals  []any
	index map[string]int
}

// Zip pairs headers[i] with values[i]. A length mismatch or a duplicate
// header is a validation error: either means the CSV is malformed.
func Zip(headers []string, values []any) (Row, error) {
	if len(headers) != len(values) {
		return Row{}, loaderr.Validationf("map row", "%d values for %d columns", len(values), len(headers))
	}
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; dup {
			return Row{}, loaderr.Validationf("map row", "duplicate column %q", h)
		}
		index[h] = i
	}
	return Row{
		keys:  append([]string(nil), headers...),
		vals:  append([]any(nil), values...),
		index: index,
	}, nil
}

// Keys returns the column names in order.
func (r Row) Keys() []string { return append([]string(nil), r.keys...) }

// Values returns the values in column order.
func (r Row) Values() []any { return append([]any(nil), r.vals...) }

// Len is the number of columns.
func (r Row) Len() int { return len(r.keys) }

// Get returns the value for column name.
func (r Row) Get(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.vals[i], true
}

// MapRows zips every row with headers. Errors name the 1-based data row and
// its CSV line (the header occupies line 1).
func MapRows(headers []string, rows [][]any) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for i, values := range rows {
		r, err := Zip(headers, values)
		if err != nil {
			return nil, loaderr.Validationf("map rows", "data row %d (line %d): %v", i+1, i+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Matrix flattens rows into their value slices.
func Matrix(rows []Row) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Values())
	}
	return out
}

// RemoveNullRows returns the rows that hold at least one non-nil value. The
// input is not modified.
func RemoveNullRows(rows [][]any) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		if !allNil(r) {
			out = append(out, r)
		}
	}
	return out
}

func allNil(r []any) bool {
	for _, v := range r {
		if v != nil {
			return false
		}
	}
	return true
}
