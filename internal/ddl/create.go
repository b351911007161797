// Package ddl defines the column descriptor model and renders CREATE TABLE
// statements from it.
//
// Rendering is split between a fixed logical→SQL type mapping (Standard) and
// per-backend Dialect implementations that quote identifiers and, where the
// standard spelling is not valid for them, override individual types.
package ddl

import (
	"fmt"
	"regexp"
	"strings"

	"csvload/internal/loaderr"
)

// Dialect renders identifiers and column types for one SQL backend.
type Dialect interface {
	QuoteIdent(id string) string
	ColumnType(c ColumnDescriptor) (string, error)
}

// Standard is the reference dialect: double-quoted identifiers and the
// StandardType mapping. SQLite uses it as-is.
type Standard struct{}

func (Standard) QuoteIdent(id string) string { return QuoteIdent(id) }

func (Standard) ColumnType(c ColumnDescriptor) (string, error) { return StandardType(c) }

// QuoteIdent double-quotes id, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// StandardType maps a descriptor to its SQL type clause:
//
//	integer  -> INTEGER
//	float    -> REAL
//	decimal  -> NUMERIC(size, precision)   both required
//	datetime -> DATETIME
//	boolean  -> BOOLEAN
//	other    -> VARCHAR(size)              size defaults to DefaultVarcharSize
func StandardType(c ColumnDescriptor) (string, error) {
	switch ParseType(string(c.Type)) {
	case TypeInteger:
		return "INTEGER", nil
	case TypeFloat:
		return "REAL", nil
	case TypeDecimal:
		if c.Size == nil || c.Precision == nil {
			return "", loaderr.Validationf("column type", "decimal column %q requires both size and precision", c.Name)
		}
		if *c.Size <= 0 || *c.Precision < 0 || *c.Precision > *c.Size {
			return "", loaderr.Validationf("column type", "decimal column %q has invalid size/precision %d,%d", c.Name, *c.Size, *c.Precision)
		}
		return fmt.Sprintf("NUMERIC(%d, %d)", *c.Size, *c.Precision), nil
	case TypeDatetime:
		return "DATETIME", nil
	case TypeBoolean:
		return "BOOLEAN", nil
	default:
		size := DefaultVarcharSize
		if c.Size != nil {
			size = *c.Size
		}
		if size <= 0 {
			return "", loaderr.Validationf("column type", "string column %q has invalid size %d", c.Name, size)
		}
		return fmt.Sprintf("VARCHAR(%d)", size), nil
	}
}

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidIdentifier reports whether s may be used as a table or column name.
// Normalized CSV headers always satisfy it.
func ValidIdentifier(s string) bool {
	return identPattern.MatchString(s)
}

// BuildCreateTableSQL renders
//
//	CREATE TABLE <table> (<col> <type>, <col> <type>);
//
// with identifiers quoted by d. Table and column names must be valid
// identifiers and there must be at least one column.
func BuildCreateTableSQL(d Dialect, table string, cols []ColumnDescriptor) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", loaderr.Validationf("create table", "table name must not be empty")
	}
	if !ValidIdentifier(table) {
		return "", loaderr.Validationf("create table", "invalid table name %q", table)
	}
	if len(cols) == 0 {
		return "", loaderr.Validationf("create table", "at least one column is required for %s", table)
	}

	clauses := make([]string, 0, len(cols))
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if !ValidIdentifier(c.Name) {
			return "", loaderr.Validationf("create table", "invalid column name %q in table %s", c.Name, table)
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			return "", loaderr.Validationf("create table", "duplicate column %q in table %s", c.Name, table)
		}
		seen[key] = struct{}{}

		typ, err := d.ColumnType(c)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, d.QuoteIdent(c.Name)+" "+typ)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s);", d.QuoteIdent(table), strings.Join(clauses, ", ")), nil
}
