// Package storage holds the backend-agnostic store contract, the backend
// factory, and the Loader that creates tables and bulk-inserts rows through
// any registered backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"csvload/internal/ddl"
)

// Column is one column of an existing table as reported by the store.
// Type is the backend's own spelling of the declared type.
type Column struct {
	Name string
	Type string
}

// Repository is the minimal surface a backend must offer for a CSV load.
type Repository interface {
	// Dialect renders identifiers and column types for this backend.
	Dialect() ddl.Dialect

	// TableExists reports whether table is present in the store.
	TableExists(ctx context.Context, table string) (bool, error)

	// TableColumns returns the columns of table in declaration order. A
	// missing table yields an empty slice.
	TableColumns(ctx context.Context, table string) ([]Column, error)

	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// InsertRows writes rows into table inside one transaction. Either every
	// row is committed or none is.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	Close()
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering the same kind
// twice replaces the earlier factory.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds in sorted order. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CoerceValue adapts a parsed CSV value to the declared column type for
// backends with strict parameter typing. Numbers bound to text columns are
// formatted as text; text bound to boolean or date/time columns is parsed
// when it can be. Anything else passes through and is left to the driver.
func CoerceValue(v any, sqlType string) any {
	if v == nil {
		return nil
	}
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	switch {
	case hasAnyPrefix(t, "VARCHAR", "NVARCHAR", "CHAR", "TEXT", "CHARACTER"):
		switch x := v.(type) {
		case int64:
			return strconv.FormatInt(x, 10)
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
	case hasAnyPrefix(t, "BOOL", "BIT", "TINYINT(1)"):
		switch x := v.(type) {
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
				return b
			}
		case int64:
			if x == 0 || x == 1 {
				return x == 1
			}
		}
	case hasAnyPrefix(t, "TIMESTAMP", "DATETIME", "DATE"):
		if s, ok := v.(string); ok {
			if ts, ok := parseTime(s); ok {
				return ts
			}
		}
	}
	return v
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
