package mysql

import (
	"strings"

	"csvload/internal/ddl"
)

// Dialect renders MySQL DDL with `backtick` identifiers. The standard type
// spellings are all valid MySQL; only float and integer are widened.
type Dialect struct{}

func (Dialect) QuoteIdent(id string) string { return myIdent(id) }

func (Dialect) ColumnType(c ddl.ColumnDescriptor) (string, error) {
	switch ddl.ParseType(string(c.Type)) {
	case ddl.TypeInteger:
		return "BIGINT", nil
	case ddl.TypeFloat:
		return "DOUBLE", nil
	default:
		return ddl.StandardType(c)
	}
}

// myIdent backtick-quotes an identifier, doubling embedded backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
