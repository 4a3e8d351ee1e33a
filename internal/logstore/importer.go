package logstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logbot/logbot/internal/logschema"
)

// ErrUnknownColumn is returned when a CSV header names a column the table
// does not declare.
var ErrUnknownColumn = errors.New("unknown column")

// ImportCSV appends the rows of r into table. The first CSV record is the
// header and may list the table's columns in any order. INTEGER columns are
// parsed; empty cells become NULL. It returns the number of rows inserted.
func (e *SQLExecutor) ImportCSV(ctx context.Context, table logschema.Table, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	types := make([]logschema.ColumnType, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		header[i] = h
		found := false
		for _, c := range table.Columns {
			if c.Name == h {
				types[i] = c.Type
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%s.%s: %w", table.Name, h, ErrUnknownColumn)
		}
	}

	stmt := e.insertStatement(table.Name, header)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer prepared.Close()

	n := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, fmt.Errorf("read line %d: %w", n+2, err)
		}
		args := make([]any, len(header))
		for i := range header {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			args[i], err = convertCell(v, types[i])
			if err != nil {
				return n, fmt.Errorf("line %d column %s: %w", n+2, header[i], err)
			}
		}
		if _, err := prepared.ExecContext(ctx, args...); err != nil {
			return n, fmt.Errorf("insert line %d: %w", n+2, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (e *SQLExecutor) insertStatement(table string, cols []string) string {
	marks := make([]string, len(cols))
	for i := range cols {
		if e.dialect == DialectPostgres {
			marks[i] = "$" + strconv.Itoa(i+1)
		} else {
			marks[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func convertCell(v string, t logschema.ColumnType) (any, error) {
	if v == "" {
		return nil, nil
	}
	if t == logschema.TypeInteger {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(v, 64)
			if ferr != nil {
				return nil, fmt.Errorf("not an integer: %q", v)
			}
			return int64(f), nil
		}
		return n, nil
	}
	return v, nil
}
