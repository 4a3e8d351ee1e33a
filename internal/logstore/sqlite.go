package logstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const DialectSQLite = "SQLite"

// OpenSQLite opens the log database at path with WAL journaling and a busy
// timeout. readOnly opens the file with mode=ro so generated SQL cannot
// write even if it slips past validation.
func OpenSQLite(path string, readOnly bool) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	if readOnly {
		params.Set("mode", "ro")
	} else {
		params.Set("_journal_mode", "WAL")
		params.Set("_synchronous", "NORMAL")
	}
	dsn := "file:" + path + "?" + params.Encode()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if readOnly {
		db.SetMaxOpenConns(4)
	} else {
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// NewSQLiteExecutor opens path and returns an executor over it.
func NewSQLiteExecutor(path string, readOnly bool) (*SQLExecutor, error) {
	db, err := OpenSQLite(path, readOnly)
	if err != nil {
		return nil, err
	}
	return NewSQLExecutor(db, DialectSQLite), nil
}
