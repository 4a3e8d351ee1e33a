package translator

import (
	"fmt"
	"strings"

	"github.com/logbot/logbot/internal/logschema"
)

// Refusal is the literal escape phrase the model is told to answer with for
// questions the log tables cannot answer.
const Refusal = "I can't help with that"

const sampleRows = 5

// BuildPrompt renders the query-generation prompt for question against
// schema. dialect names the SQL flavor the store speaks.
func BuildPrompt(schema *logschema.Schema, dialect, question string) string {
	tables := schema.Tables()
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = "`" + t.Name + "`"
	}

	var b strings.Builder
	b.WriteString("You are a SQL assistant helping analyze internal logs from a security and network observability platform.\n\n")
	fmt.Fprintf(&b, "The logs are stored in %d tables: %s.\n\n", len(tables), joinNames(names))
	b.WriteString("Each table has the following schemas:\n\n")
	b.WriteString(schema.Describe())
	b.WriteString("\n")

	for _, t := range tables {
		fmt.Fprintf(&b, "example data for %s:\n", t.Name)
		b.WriteString(t.SampleTable(sampleRows))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Use the %s to join tables when the question requires correlating events.\n\n", logschema.JoinKey)

	b.WriteString("Some example questions:\nExample Question → SQL:\n\n")
	for _, ex := range logschema.Examples() {
		fmt.Fprintf(&b, "- %s\n→ %s\n\n", ex.Question, ex.SQL)
	}

	fmt.Fprintf(&b, "if the question is not related to the logs, say %q.\n\n", Refusal)
	fmt.Fprintf(&b, "Now, using the following user question and schema, generate a syntactically valid SQL query that works for %s. Do NOT explain the query, just return the SQL.\n\n", dialect)
	b.WriteString("Schema:\n")
	b.WriteString(schema.DDL())
	b.WriteString("\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}

// joinNames renders "a, b, and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}
