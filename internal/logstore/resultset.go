package logstore

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"
)

// SQLQuery is a generated statement. It is produced once per turn and
// executed at most once.
type SQLQuery string

func (q SQLQuery) String() string { return string(q) }

// ErrArityMismatch is returned when a row's width differs from the column count.
var ErrArityMismatch = errors.New("row arity does not match column count")

// ResultSet is an ordered list of fixed-arity rows plus their column names.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Validate checks that every row has exactly len(Columns) values.
func (rs *ResultSet) Validate() error {
	for i, row := range rs.Rows {
		if len(row) != len(rs.Columns) {
			return fmt.Errorf("row %d has %d values for %d columns: %w", i, len(row), len(rs.Columns), ErrArityMismatch)
		}
	}
	return nil
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Empty reports whether the set has no columns at all.
func (rs *ResultSet) Empty() bool {
	return rs == nil || len(rs.Columns) == 0
}

// ColumnIndex returns the position of name, or -1.
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// WithUniqueColumns returns rs itself when its column names are distinct,
// otherwise a copy sharing the rows whose columns went through UniqueColumns.
func (rs *ResultSet) WithUniqueColumns() *ResultSet {
	if rs == nil {
		return nil
	}
	cols := UniqueColumns(rs.Columns)
	for i := range cols {
		if cols[i] != rs.Columns[i] {
			return &ResultSet{Columns: cols, Rows: rs.Rows}
		}
	}
	return rs
}

// UniqueColumns renames repeated names so every column can be addressed by
// name. The first occurrence keeps its name; later ones get _2, _3 and so on,
// skipping names already present in cols.
func UniqueColumns(cols []string) []string {
	taken := make(map[string]bool, len(cols))
	for _, c := range cols {
		taken[c] = true
	}
	used := make(map[string]bool, len(cols))
	out := make([]string, len(cols))
	for i, c := range cols {
		if !used[c] {
			used[c] = true
			out[i] = c
			continue
		}
		for n := 2; ; n++ {
			cand := fmt.Sprintf("%s_%d", c, n)
			if !taken[cand] && !used[cand] {
				used[cand] = true
				out[i] = cand
				break
			}
		}
	}
	return out
}

// Values returns the column at position i as a slice.
func (rs *ResultSet) Values(i int) []any {
	out := make([]any, len(rs.Rows))
	for r, row := range rs.Rows {
		out[r] = row[i]
	}
	return out
}

// Clone returns a copy whose rows can be modified independently.
func (rs *ResultSet) Clone() *ResultSet {
	out := &ResultSet{
		Columns: append([]string(nil), rs.Columns...),
		Rows:    make([][]any, len(rs.Rows)),
	}
	for i, row := range rs.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// normalizeValue folds driver-specific scalars into int64, float64, bool,
// string or nil so downstream dtype inference sees a small closed set.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case string, bool, int64, float64:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return foldUnsigned(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return foldUnsigned(x)
	case float32:
		return float64(x)
	case *big.Rat:
		f, _ := x.Float64()
		return f
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// foldUnsigned keeps integers that fit int64 and degrades larger ones to float64.
func foldUnsigned(x uint64) any {
	if x > math.MaxInt64 {
		return float64(x)
	}
	return int64(x)
}
