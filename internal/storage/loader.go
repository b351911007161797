package storage

import (
	"context"
	"log"
	"time"

	"csvload/internal/ddl"
	"csvload/internal/loaderr"
)

// Loader creates tables and loads row matrices through a Repository.
//
// Logging: when Verbose is set, one line is emitted per CREATE TABLE and per
// committed insert with row count and elapsed time.
type Loader struct {
	Repo    Repository
	Verbose bool
}

// NewLoader returns a Loader over repo.
func NewLoader(repo Repository, verbose bool) *Loader {
	return &Loader{Repo: repo, Verbose: verbose}
}

// CreateTable renders CREATE TABLE for cols in the repository's dialect and
// executes it. An existing table is never touched: the call fails with an
// AlreadyExists error instead.
func (l *Loader) CreateTable(ctx context.Context, table string, cols []ddl.ColumnDescriptor) error {
	stmt, err := ddl.BuildCreateTableSQL(l.Repo.Dialect(), table, cols)
	if err != nil {
		return err
	}

	exists, err := l.Repo.TableExists(ctx, table)
	if err != nil {
		return loaderr.Storef("create table", table, err)
	}
	if exists {
		return loaderr.Exists(table)
	}

	if err := l.Repo.Exec(ctx, stmt); err != nil {
		return loaderr.Storef("create table", table, err)
	}
	l.logf("loader: created table=%s columns=%d", table, len(cols))
	return nil
}

// InsertData inserts rows into table in one transaction and returns the
// number of rows written.
//
// The store's column list decides width and order. Every row is checked
// against it before anything is written, so a width mismatch leaves the table
// untouched. An empty rows slice is a no-op that does not reach the store.
func (l *Loader) InsertData(ctx context.Context, table string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	cols, err := l.Repo.TableColumns(ctx, table)
	if err != nil {
		return 0, loaderr.Storef("insert", table, err)
	}
	if len(cols) == 0 {
		return 0, &loaderr.Error{Kind: loaderr.Store, Op: "insert", Table: table, Msg: "table " + table + " has no columns or does not exist"}
	}

	for i, r := range rows {
		if len(r) != len(cols) {
			return 0, loaderr.Validationf("insert", "row %d has %d values, table %s has %d columns", i+1, len(r), table, len(cols))
		}
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	start := time.Now()
	n, err := l.Repo.InsertRows(ctx, table, names, rows)
	if err != nil {
		log.Printf("loader: insert failed table=%s rows=%d err=%v", table, len(rows), err)
		return 0, loaderr.Storef("insert", table, err)
	}
	l.logf("loader: inserted table=%s rows=%d elapsed=%s", table, n, time.Since(start).Truncate(time.Millisecond))
	return n, nil
}

func (l *Loader) logf(format string, args ...any) {
	if l.Verbose {
		log.Printf(format, args...)
	}
}
