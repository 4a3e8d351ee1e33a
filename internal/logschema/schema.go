// Package logschema describes the fixed three-table log store that every
// question is answered from. The schema is compiled in and never changes at
// runtime; accessors hand out copies.
package logschema

import (
	"fmt"
	"strings"
)

// ColumnType is the storage affinity of a column.
type ColumnType string

const (
	TypeText    ColumnType = "TEXT"
	TypeInteger ColumnType = "INTEGER"
)

// JoinKey correlates rows across the three tables.
const JoinKey = "request_id"

type Column struct {
	Name string
	Type ColumnType
}

// Table is one log table plus the sample rows shown to the model.
type Table struct {
	Name        string
	Description string
	Columns     []Column
	Samples     [][]string
}

// ColumnNames returns the table's column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table declares the named column.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Signature renders "name(col, col, ...)".
func (t Table) Signature() string {
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(t.ColumnNames(), ", "))
}

// SampleTable renders the first n sample rows as a markdown table.
func (t Table) SampleTable(n int) string {
	if n > len(t.Samples) {
		n = len(t.Samples)
	}
	cols := t.ColumnNames()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range t.Samples[:n] {
		for i, v := range row {
			if i < len(widths) && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, w := range widths {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			fmt.Fprintf(&b, " %-*s |", w, v)
		}
		b.WriteString("\n")
	}
	writeRow(cols)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range t.Samples[:n] {
		writeRow(row)
	}
	return b.String()
}

// Schema is the immutable set of log tables.
type Schema struct {
	tables []Table
}

// Tables returns a deep copy of the schema tables.
func (s *Schema) Tables() []Table {
	out := make([]Table, len(s.tables))
	for i, t := range s.tables {
		cp := t
		cp.Columns = append([]Column(nil), t.Columns...)
		cp.Samples = make([][]string, len(t.Samples))
		for j, r := range t.Samples {
			cp.Samples[j] = append([]string(nil), r...)
		}
		out[i] = cp
	}
	return out
}

// Table looks up a table by name.
func (s *Schema) Table(name string) (Table, bool) {
	for _, t := range s.Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableNames returns the table names in declaration order.
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names
}

// Describe renders one signature line per table, used as model context.
func (s *Schema) Describe() string {
	var b strings.Builder
	for _, t := range s.tables {
		fmt.Fprintf(&b, "- %s\n", t.Signature())
	}
	return b.String()
}

// DDL renders CREATE TABLE statements for the schema.
func (s *Schema) DDL() string {
	var b strings.Builder
	for _, t := range s.tables {
		fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
		for i, c := range t.Columns {
			sep := ","
			if i == len(t.Columns)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "    %s %s%s\n", c.Name, c.Type, sep)
		}
		b.WriteString(");\n")
	}
	return b.String()
}

// Default returns the log schema: VPC flow logs, API access logs and
// function execution logs, joinable on request_id.
func Default() *Schema {
	return &Schema{tables: []Table{
		{
			Name:        "vpc_logs",
			Description: "network flow records",
			Columns: []Column{
				{"timestamp", TypeText},
				{"src_ip", TypeText},
				{"dst_ip", TypeText},
				{"action", TypeText},
				{"bytes_sent", TypeInteger},
				{"request_id", TypeText},
			},
			Samples: [][]string{
				{"2025-04-13T12:00:00", "192.168.1.1", "10.0.0.5", "ACCEPT", "2111", "req-118ab9fe"},
				{"2025-04-13T12:01:00", "192.168.1.2", "10.0.0.6", "REJECT", "2635", "req-fc133d2e"},
				{"2025-04-13T12:02:00", "192.168.1.3", "10.0.0.7", "ACCEPT", "3328", "req-7af7bf97"},
				{"2025-04-13T12:03:00", "192.168.1.4", "10.0.0.8", "REJECT", "1347", "req-612e052f"},
				{"2025-04-13T12:04:00", "192.168.1.5", "10.0.0.9", "REJECT", "3793", "req-a8ea25b5"},
			},
		},
		{
			Name:        "access_logs",
			Description: "API access records",
			Columns: []Column{
				{"timestamp", TypeText},
				{"user_id", TypeText},
				{"endpoint", TypeText},
				{"method", TypeText},
				{"status_code", TypeInteger},
				{"request_id", TypeText},
			},
			Samples: [][]string{
				{"2025-04-13T12:00:00", "user_1", "/api/login", "GET", "200", "req-118ab9fe"},
				{"2025-04-13T12:01:00", "user_2", "/api/data", "GET", "403", "req-fc133d2e"},
				{"2025-04-13T12:02:00", "user_3", "/api/login", "POST", "201", "req-7af7bf97"},
				{"2025-04-13T12:03:00", "user_4", "/api/login", "GET", "200", "req-612e052f"},
				{"2025-04-13T12:04:00", "user_5", "/api/login", "GET", "201", "req-a8ea25b5"},
			},
		},
		{
			Name:        "execution_logs",
			Description: "function execution records",
			Columns: []Column{
				{"timestamp", TypeText},
				{"function_name", TypeText},
				{"duration_ms", TypeInteger},
				{"status", TypeText},
				{"request_id", TypeText},
			},
			Samples: [][]string{
				{"2025-04-13T12:00:00", "auth_user", "924", "SUCCESS", "req-118ab9fe"},
				{"2025-04-13T12:01:00", "auth_user", "476", "SUCCESS", "req-fc133d2e"},
				{"2025-04-13T12:02:00", "get_data", "218", "SUCCESS", "req-7af7bf97"},
				{"2025-04-13T12:03:00", "auth_user", "914", "FAILED", "req-612e052f"},
				{"2025-04-13T12:04:00", "get_data", "792", "SUCCESS", "req-a8ea25b5"},
			},
		},
	}}
}
