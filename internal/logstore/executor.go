// Package logstore runs generated SQL against the log tables. The default
// backend is a SQLite file; Postgres, BigQuery and Elasticsearch SQL are
// available for deployments that keep their logs elsewhere.
package logstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Executor runs a single statement and returns every row it produces.
type Executor interface {
	Execute(ctx context.Context, q SQLQuery) (*ResultSet, error)
	Ping(ctx context.Context) error
	// Dialect names the SQL flavour the translator should target.
	Dialect() string
	Close() error
}

// SQLExecutor runs queries through database/sql. It backs both the SQLite
// and the Postgres stores.
type SQLExecutor struct {
	db      *sql.DB
	dialect string
}

// NewSQLExecutor wraps an open pool. dialect is shown to the translator.
func NewSQLExecutor(db *sql.DB, dialect string) *SQLExecutor {
	return &SQLExecutor{db: db, dialect: dialect}
}

// DB exposes the underlying pool for migrations and imports.
func (e *SQLExecutor) DB() *sql.DB { return e.db }

func (e *SQLExecutor) Dialect() string { return e.dialect }

func (e *SQLExecutor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

func (e *SQLExecutor) Close() error {
	return e.db.Close()
}

// Execute runs q and fetches all rows. Column names come from the cursor,
// with repeats renamed by UniqueColumns.
func (e *SQLExecutor) Execute(ctx context.Context, q SQLQuery) (*ResultSet, error) {
	start := time.Now()
	rows, err := e.db.QueryContext(ctx, string(q))
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	rs := &ResultSet{Columns: UniqueColumns(cols), Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	log.Debug().
		Str("dialect", e.dialect).
		Int("rows", len(rs.Rows)).
		Int("columns", len(cols)).
		Dur("duration", time.Since(start)).
		Msg("query executed")
	return rs, nil
}
