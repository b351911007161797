package mssql

import (
	"strings"

	"csvload/internal/ddl"
)

// Dialect renders SQL Server DDL: [bracket] identifiers, BIT for booleans,
// DATETIME2 for timestamps and FLOAT for doubles.
type Dialect struct{}

// QuoteIdent quotes a SQL Server identifier using [brackets], escaping ].
func (Dialect) QuoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

func (Dialect) ColumnType(c ddl.ColumnDescriptor) (string, error) {
	switch ddl.ParseType(string(c.Type)) {
	case ddl.TypeBoolean:
		return "BIT", nil
	case ddl.TypeDatetime:
		return "DATETIME2", nil
	case ddl.TypeInteger:
		return "BIGINT", nil
	case ddl.TypeFloat:
		return "FLOAT", nil
	case ddl.TypeString:
		s, err := ddl.StandardType(c)
		if err != nil {
			return "", err
		}
		return "N" + s, nil
	default:
		return ddl.StandardType(c)
	}
}
