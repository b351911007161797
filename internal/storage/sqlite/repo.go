// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Rows are written with a prepared INSERT inside a single
// transaction; SQLite has no dedicated bulk-load API like Postgres COPY.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"csvload/internal/ddl"
	"csvload/internal/storage"

	_ "modernc.org/sqlite"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if cfg.inMemory() {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// Dialect returns the standard dialect; SQLite accepts every standard type
// spelling and double-quoted identifiers.
func (r *Repository) Dialect() ddl.Dialect { return ddl.Standard{} }

// TableExists looks table up in sqlite_master. SQLite identifiers are
// case-insensitive, so the comparison is too.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE`,
		table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: table exists: %w", err)
	}
	return n > 0, nil
}

// TableColumns returns the columns of table in declaration order, read from
// pragma_table_info. A missing table yields no columns.
func (r *Repository) TableColumns(ctx context.Context, table string) ([]storage.Column, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: table info: %w", err)
	}
	defer rows.Close()

	var cols []storage.Column
	for rows.Next() {
		var c storage.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("sqlite: scan table info: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: table info: %w", err)
	}
	return cols, nil
}

// InsertRows inserts rows into table using a single transaction and a
// prepared INSERT statement. Any failure rolls the whole batch back.
func (r *Repository) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	stmtSQL := insertSQL(table, columns)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("sqlite: insert: row %d length %d != columns length %d", i+1, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("sqlite: insert row %d: %w", i+1, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a single SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// insertSQL builds INSERT INTO "t" ("a", "b") VALUES (?, ?).
func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = ddl.QuoteIdent(c)
		placeholders[i] = "?"
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		ddl.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
}
