package postgres

import (
	"github.com/jackc/pgx/v5"

	"csvload/internal/ddl"
)

// Dialect renders Postgres DDL. Postgres has no DATETIME type, and parsed
// integers are int64, so those two spellings differ from the standard ones.
type Dialect struct{}

// QuoteIdent quotes id with pgx's identifier sanitizer.
func (Dialect) QuoteIdent(id string) string { return pgx.Identifier{id}.Sanitize() }

func (Dialect) ColumnType(c ddl.ColumnDescriptor) (string, error) {
	switch ddl.ParseType(string(c.Type)) {
	case ddl.TypeDatetime:
		return "TIMESTAMP", nil
	case ddl.TypeInteger:
		return "BIGINT", nil
	case ddl.TypeFloat:
		return "DOUBLE PRECISION", nil
	default:
		return ddl.StandardType(c)
	}
}
