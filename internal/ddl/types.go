package ddl

import (
	"fmt"
	"strings"
)

// Type is the closed set of logical column types a descriptor may carry.
type Type string

const (
	TypeInteger  Type = "integer"
	TypeFloat    Type = "float"
	TypeDecimal  Type = "decimal"
	TypeDatetime Type = "datetime"
	TypeBoolean  Type = "boolean"
	TypeString   Type = "string"
)

// DefaultVarcharSize is used for string columns declared without a size.
const DefaultVarcharSize = 255

// ParseType maps loosely-written type names onto Type. Anything unrecognized
// (including "varchar" and "text") is a string column.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int", "bigint":
		return TypeInteger
	case "float", "real", "double":
		return TypeFloat
	case "decimal", "numeric":
		return TypeDecimal
	case "datetime", "timestamp", "date":
		return TypeDatetime
	case "boolean", "bool":
		return TypeBoolean
	default:
		return TypeString
	}
}

// ColumnDescriptor describes a single column: its name, logical type and
// optional size/precision. Name is unquoted; quoting happens at render time.
//
// Size is the VARCHAR length for strings and the total digits for decimals;
// Precision is the number of decimal places.
type ColumnDescriptor struct {
	Name      string
	Type      Type
	Size      *int
	Precision *int
}

// IntPtr returns a pointer to n, for filling Size and Precision.
func IntPtr(n int) *int { return &n }

func (c ColumnDescriptor) String() string {
	s := c.Name + " " + string(c.Type)
	switch {
	case c.Size != nil && c.Precision != nil:
		s += fmt.Sprintf("(%d, %d)", *c.Size, *c.Precision)
	case c.Size != nil:
		s += fmt.Sprintf("(%d)", *c.Size)
	}
	return s
}
