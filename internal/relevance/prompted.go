package relevance

import (
	"context"
	"fmt"
	"strings"

	"github.com/logbot/logbot/internal/llm"
	"github.com/logbot/logbot/internal/logschema"
)

// PromptClassifier asks a language model for a one-word verdict.
type PromptClassifier struct {
	model  llm.Model
	schema *logschema.Schema
}

func NewPromptClassifier(model llm.Model, schema *logschema.Schema) *PromptClassifier {
	return &PromptClassifier{model: model, schema: schema}
}

// IsLogQuery is true only when the trimmed reply is exactly "log_query".
func (c *PromptClassifier) IsLogQuery(ctx context.Context, question string) (bool, error) {
	out, err := c.model.Complete(ctx, c.prompt(question))
	if err != nil {
		return false, fmt.Errorf("relevance: %w", err)
	}
	return strings.TrimSpace(out) == LabelLogQuery, nil
}

func (c *PromptClassifier) prompt(question string) string {
	var b strings.Builder
	b.WriteString("Classify this query as 'log_query' or 'non_log_query':\n\n")
	fmt.Fprintf(&b, "Query: %q\n\n", question)
	fmt.Fprintf(&b, "A log_query is a natural language query or action related to the tables below, or one that SQL over these tables (joined using %s) can answer. It includes queries involving the following log-related tables:\n", logschema.JoinKey)
	for i, t := range c.schema.Tables() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Signature())
	}
	b.WriteString("\n")
	for _, t := range c.schema.Tables() {
		fmt.Fprintf(&b, "Example Data for %s:\n", t.Name)
		b.WriteString(t.SampleTable(2))
		b.WriteString("\n")
	}
	b.WriteString("Examples of log_queries:\n")
	for _, q := range logschema.AggregateQuestions {
		b.WriteString(q)
		b.WriteString("\n")
	}
	for _, q := range logschema.LogQuestions {
		b.WriteString(q)
		b.WriteString("\n")
	}
	b.WriteString("\nA non_log_query is any query that does not relate to the tables above.\n\n")
	b.WriteString("Only return one word: 'log_query' or 'non_log_query'.")
	return b.String()
}
