// Package loaderr defines the error kinds a CSV load can fail with. Callers
// branch on the kind with errors.Is against the sentinels below, or with
// KindOf when they need a switch (e.g. to pick a process exit code).
package loaderr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a load failure.
type Kind int

const (
	// Unknown is returned by KindOf for errors not produced by this package.
	Unknown Kind = iota
	// IO means the source file is missing or unreadable.
	IO
	// AlreadyExists means the target table is already present in the store.
	AlreadyExists
	// Validation covers row width mismatches, bad descriptors and numeric
	// values that fail conversion.
	Validation
	// Store means the backing store rejected a statement.
	Store
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "io"
	case AlreadyExists:
		return "already_exists"
	case Validation:
		return "validation"
	case Store:
		return "store"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. They carry only a Kind.
var (
	ErrIO            = &Error{Kind: IO}
	ErrAlreadyExists = &Error{Kind: AlreadyExists}
	ErrValidation    = &Error{Kind: Validation}
	ErrStore         = &Error{Kind: Store}
)

// Error is a classified load failure. Op names the failing operation
// ("read csv", "create table", ...); Table is set when a table is involved.
type Error struct {
	Kind  Kind
	Op    string
	Table string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return e.Kind.String() + " error"
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. This lets the
// package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IOf wraps err as an IO failure.
func IOf(op string, err error) error {
	return &Error{Kind: IO, Op: op, Err: err}
}

// Validationf builds a validation failure with a formatted message.
func Validationf(op, format string, a ...any) error {
	return &Error{Kind: Validation, Op: op, Msg: fmt.Sprintf(format, a...)}
}

// Exists reports that table is already present.
func Exists(table string) error {
	return &Error{
		Kind:  AlreadyExists,
		Op:    "create table",
		Table: table,
		Msg:   fmt.Sprintf("the table '%s' already exists", table),
	}
}

// Storef wraps a store error. The driver error is kept verbatim in the chain.
func Storef(op, table string, err error) error {
	return &Error{Kind: Store, Op: op, Table: table, Err: err}
}
