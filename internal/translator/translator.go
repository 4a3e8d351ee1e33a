// Package translator turns a natural-language log question into a single
// SQL query for the configured store.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/logbot/logbot/internal/llm"
	"github.com/logbot/logbot/internal/logschema"
	"github.com/logbot/logbot/internal/logstore"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnanswerable means the model declined: the question cannot be
	// answered from the log tables.
	ErrUnanswerable = errors.New("question cannot be answered from the logs")
	// ErrEmptyQuery means the model returned neither SQL nor a refusal.
	ErrEmptyQuery = errors.New("model returned no SQL query")
)

type Translator struct {
	model   llm.Model
	schema  *logschema.Schema
	dialect string
}

func New(model llm.Model, schema *logschema.Schema, dialect string) *Translator {
	if dialect == "" {
		dialect = logstore.DialectSQLite
	}
	return &Translator{model: model, schema: schema, dialect: dialect}
}

// Translate asks the model for a query answering question. The structured
// query field wins; free text is searched for SQL otherwise.
func (t *Translator) Translate(ctx context.Context, question string) (logstore.SQLQuery, error) {
	prompt := BuildPrompt(t.schema, t.dialect, question)

	out, err := t.model.GenerateQuery(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return "", ErrEmptyQuery
		}
		return "", fmt.Errorf("generate query: %w", err)
	}

	sql := strings.TrimSpace(out.Query)
	if isRefusal(sql) || (sql == "" && isRefusal(out.Text)) {
		return "", ErrUnanswerable
	}
	if sql == "" {
		sql = ExtractSQL(out.Text)
	}
	if sql == "" {
		log.Warn().Str("model", t.model.Name()).Str("text", truncate(out.Text, 200)).Msg("no SQL in model output")
		return "", ErrEmptyQuery
	}

	log.Debug().Str("model", t.model.Name()).Str("sql", sql).Msg("question translated")
	return logstore.SQLQuery(sql), nil
}

func isRefusal(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "’", "'")
	return strings.Contains(s, strings.ToLower(Refusal))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
