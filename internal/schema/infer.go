// Package schema derives the column descriptors of the destination table
// from the parsed header row, the caller's declared types and, when asked,
// the parsed values themselves.
package schema

import (
	"strings"

	"csvload/internal/ddl"
	"csvload/internal/loaderr"
)

// Columns returns one descriptor per header, in header order.
//
//   - A header with a declared column (matched case-insensitively) takes the
//     declared type, size and precision.
//   - Otherwise, when infer is set, the type is inferred from the column's
//     values (see InferType).
//   - Otherwise the column is a string.
//
// A declared column that does not appear in headers is a validation error.
func Columns(headers []string, declared []ddl.ColumnDescriptor, rows [][]any, infer bool) ([]ddl.ColumnDescriptor, error) {
	byName := make(map[string]ddl.ColumnDescriptor, len(declared))
	for _, d := range declared {
		byName[strings.ToLower(d.Name)] = d
	}

	present := make(map[string]struct{}, len(headers))
	out := make([]ddl.ColumnDescriptor, len(headers))
	for i, h := range headers {
		key := strings.ToLower(h)
		present[key] = struct{}{}

		if d, ok := byName[key]; ok {
			d.Name = h
			out[i] = d
			continue
		}
		typ := ddl.TypeString
		if infer {
			typ = InferType(column(rows, i))
		}
		out[i] = ddl.ColumnDescriptor{Name: h, Type: typ}
	}

	for _, d := range declared {
		if _, ok := present[strings.ToLower(d.Name)]; !ok {
			return nil, loaderr.Validationf("schema", "declared column %q is not among the CSV headers %v", d.Name, headers)
		}
	}
	return out, nil
}

// InferType picks the narrowest type in {integer, float, string} that holds
// every non-nil value. Integers widen to float when mixed with floats; any
// other value, or a column with no values at all, makes a string column.
func InferType(values []any) ddl.Type {
	typ := ddl.Type("")
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64:
			if typ == "" {
				typ = ddl.TypeInteger
			}
		case float64:
			if typ == "" || typ == ddl.TypeInteger {
				typ = ddl.TypeFloat
			}
		default:
			return ddl.TypeString
		}
	}
	if typ == "" {
		return ddl.TypeString
	}
	return typ
}

// column extracts column i; short rows contribute nil.
func column(rows [][]any, i int) []any {
	out := make([]any, len(rows))
	for r, row := range rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}
