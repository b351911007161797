// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API inside a transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"csvload/internal/ddl"
	"csvload/internal/storage"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// Dialect returns the SQL Server dialect.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }

// TableExists checks INFORMATION_SCHEMA.TABLES in the default schema.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		  WHERE TABLE_SCHEMA = SCHEMA_NAME() AND TABLE_NAME = @p1`,
		table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("mssql: table exists: %w", err)
	}
	return n > 0, nil
}

// TableColumns returns the columns of table in ordinal order.
func (r *Repository) TableColumns(ctx context.Context, table string) ([]storage.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS
		  WHERE TABLE_SCHEMA = SCHEMA_NAME() AND TABLE_NAME = @p1
		  ORDER BY ORDINAL_POSITION`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("mssql: columns: %w", err)
	}
	defer rows.Close()

	var cols []storage.Column
	for rows.Next() {
		var c storage.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("mssql: scan columns: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mssql: columns: %w", err)
	}
	return cols, nil
}

// InsertRows bulk-copies rows into table in one transaction. Values are
// coerced to the column types because bulk copy does not convert them.
func (r *Repository) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols, err := r.TableColumns(ctx, table)
	if err != nil {
		return 0, err
	}
	types := make(map[string]string, len(cols))
	for _, c := range cols {
		types[c.Name] = c.Type
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = storage.CoerceValue(v, types[columns[j]])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i+1, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}
