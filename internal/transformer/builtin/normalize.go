package builtin

import (
	"strings"

	csvparser "csvload/internal/parser/csv"
	"csvload/internal/record"
	"csvload/internal/transformer"
)

const nbspace = "\u00a0"

// Normalize cleans string cells: NO-BREAK SPACE becomes a plain space and
// surrounding whitespace is trimmed. A string that ends up empty becomes nil
// so that it loads as NULL like any other empty cell. A trimmed cell is typed
// again, so " 42 " becomes int64(42); one that still fails to convert (an
// overflowing integer) stays a string.
type Normalize struct{}

func (Normalize) Name() string { return "normalize" }

func (Normalize) Apply(in transformer.Table) transformer.Table {
	out := make([][]any, len(in.Rows))
	for i, row := range in.Rows {
		cp := make([]any, len(row))
		for j, v := range row {
			if raw, ok := v.(string); ok {
				s := strings.TrimSpace(strings.ReplaceAll(raw, nbspace, " "))
				if s == "" {
					cp[j] = nil
					continue
				}
				cp[j] = s
				if s != raw {
					if typed, err := csvparser.ConvertValue(s); err == nil {
						cp[j] = typed
					}
				}
				continue
			}
			cp[j] = v
		}
		out[i] = cp
	}
	return transformer.Table{Headers: in.Headers, Rows: out}
}

// DropNullRows removes rows whose values are all nil.
type DropNullRows struct{}

func (DropNullRows) Name() string { return "drop_null_rows" }

func (DropNullRows) Apply(in transformer.Table) transformer.Table {
	return transformer.Table{Headers: in.Headers, Rows: record.RemoveNullRows(in.Rows)}
}
