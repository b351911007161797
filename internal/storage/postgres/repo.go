// Package postgres implements a Postgres repository using pgx v5. Rows are
// loaded with COPY inside a transaction, so a failed load leaves no rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"csvload/internal/ddl"
	"csvload/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if _, err := pgxpool.ParseConfig(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// Dialect returns the Postgres dialect.
func (r *Repository) Dialect() ddl.Dialect { return Dialect{} }

// TableExists checks information_schema for table in the current schema.
// Names are compared exactly, matching the quoted identifiers used at create.
func (r *Repository) TableExists(ctx context.Context, table string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM information_schema.tables
		    WHERE table_schema = current_schema() AND table_name = $1)`,
		table,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("postgres: table exists: %w", err)
	}
	return ok, nil
}

// TableColumns returns the columns of table in ordinal order.
func (r *Repository) TableColumns(ctx context.Context, table string) ([]storage.Column, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT column_name, data_type
		   FROM information_schema.columns
		  WHERE table_schema = current_schema() AND table_name = $1
		  ORDER BY ordinal_position`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: columns: %w", err)
	}
	cols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.Column, error) {
		var c storage.Column
		err := row.Scan(&c.Name, &c.Type)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: columns: %w", err)
	}
	return cols, nil
}

// InsertRows COPYs rows into table inside one transaction. Values are
// coerced to the column types first: COPY uses the binary protocol, which
// does not convert between text and numbers the way parameter binding does.
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
	coerced := coerceRows(columns, rows, types)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(coerced))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("postgres: copy: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
		}
		return 0, fmt.Errorf("postgres: copy: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// coerceRows returns a copy of rows with each value adapted to the type of
// its column. Columns without a known type pass through.
func coerceRows(columns []string, rows [][]any, types map[string]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		cp := make([]any, len(row))
		for j, v := range row {
			if j < len(columns) {
				cp[j] = storage.CoerceValue(v, types[columns[j]])
			} else {
				cp[j] = v
			}
		}
		out[i] = cp
	}
	return out
}
