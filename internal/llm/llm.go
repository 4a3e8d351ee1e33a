// Package llm wraps the hosted language models behind two capabilities:
// free-text completion and structured query generation.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the provider answers with no content.
var ErrEmptyResponse = errors.New("llm: empty response")

// QueryToolName is the structured-output tool offered to the model.
const QueryToolName = "emit_sql_query"

// QueryOutput is the reply to a query-generation prompt. Query holds the
// structured field when the model used it; Text holds any free text.
type QueryOutput struct {
	Query string `json:"query"`
	Text  string `json:"-"`
}

// Model is a long-lived client for a hosted language model.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GenerateQuery(ctx context.Context, prompt string) (QueryOutput, error)
	Name() string
}

// querySchema is the JSON schema of the single-field query object.
func querySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Syntactically valid SQL query.",
			},
		},
		"required": []string{"query"},
	}
}

const queryToolDescription = "Return the SQL query that answers the user's question."
