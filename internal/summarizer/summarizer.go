// Package summarizer turns a query result into a short prose answer.
package summarizer

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/logbot/logbot/internal/llm"
	"github.com/logbot/logbot/internal/logstore"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCutoff      = 800
	DefaultPlaceholder = "The data is shown below"
)

type Summarizer struct {
	model       llm.Model
	cutoff      int
	placeholder string
}

type Option func(*Summarizer)

// WithCutoff sets the prompt length (in characters) at or above which the
// model is skipped.
func WithCutoff(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.cutoff = n
		}
	}
}

// WithPlaceholder sets the answer returned for oversized results.
func WithPlaceholder(p string) Option {
	return func(s *Summarizer) {
		if p != "" {
			s.placeholder = p
		}
	}
}

func New(model llm.Model, opts ...Option) *Summarizer {
	s := &Summarizer{model: model, cutoff: DefaultCutoff, placeholder: DefaultPlaceholder}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Summarize explains result in plain language. Prompts of cutoff characters
// or more return the placeholder without calling the model.
func (s *Summarizer) Summarize(ctx context.Context, question string, query logstore.SQLQuery, result *logstore.ResultSet) (string, error) {
	prompt := BuildPrompt(question, query, result)
	n := utf8.RuneCountInString(prompt)
	if n >= s.cutoff {
		log.Debug().Int("prompt_chars", n).Int("cutoff", s.cutoff).Msg("result too large to summarize")
		return s.placeholder, nil
	}

	out, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// BuildPrompt renders the summary prompt. The result is shown as a list of
// row tuples.
func BuildPrompt(question string, query logstore.SQLQuery, result *logstore.ResultSet) string {
	var b strings.Builder
	b.WriteString("You are a log analysis assistant.\n\n")
	b.WriteString("Given the following user question, SQL query, and result, explain the outcome, only the outcome not any others. You should strictly just explain the summary of the result only:\n\n")
	b.WriteString("The answer should be like a reply from a human. ")
	b.WriteString("Do not answer with any sensitive or private information.\n\n")
	fmt.Fprintf(&b, "User Question: %s\n", question)
	fmt.Fprintf(&b, "SQL Query: %s\n", query)
	fmt.Fprintf(&b, "SQL Result: %s\n\n", FormatRows(result))
	b.WriteString("Answer:")
	return b.String()
}

// FormatRows renders rows as [(v1, v2), (v3,)], quoting strings.
func FormatRows(result *logstore.ResultSet) string {
	if result == nil {
		return "[]"
	}
	var b strings.Builder
	b.WriteString("[")
	for i, row := range result.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatValue(v))
		}
		if len(row) == 1 {
			b.WriteString(",")
		}
		b.WriteString(")")
	}
	b.WriteString("]")
	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return quote(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	default:
		return quote(fmt.Sprint(x))
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	if q == "'" {
		s = strings.ReplaceAll(s, "'", `\'`)
	}
	s = strings.ReplaceAll(s, "\n", `\n`)
	return q + s + q
}
