// Package mysql implements a MySQL repository on database/sql with the
// go-sql-driver/mysql driver. Rows are written with a prepared INSERT inside
// one transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"csvload/internal/ddl"
	"csvload/internal/storage"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN string // go-sql-driver DSN, e.g. "user:pw@tcp(localhost:3306)/load"
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository validates the DSN, opens a pool and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	mc, err := driver.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: dsn: %w", err)
	}
	// DATETIME columns scan into time.Time rather than []byte.
	mc.ParseTime = true

	connector, err := driver.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// Dialect returns the MySQL dialect.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }

// TableExists checks information_schema in the connection's database.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables
		  WHERE table_schema = DATABASE() AND table_name = ?`,
		table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("mysql: table exists: %w", err)
	}
	return n > 0, nil
}

// TableColumns returns the columns of table in ordinal order.
func (r *Repository) TableColumns(ctx context.Context, table string) ([]storage.Column, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT column_name, data_type FROM information_schema.columns
		  WHERE table_schema = DATABASE() AND table_name = ?
		  ORDER BY ordinal_position`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}
	defer rows.Close()

	var cols []storage.Column
	for rows.Next() {
		var c storage.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("mysql: scan columns: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}
	return cols, nil
}

// InsertRows inserts rows with a prepared statement in one transaction.
func (r *Repository) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, columns))
	if err != nil {
		return 0, fmt.Errorf("mysql: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("mysql: insert row %d: %w", i+1, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a single statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myIdent(c)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		myIdent(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)
}
