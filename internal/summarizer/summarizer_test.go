package summarizer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/logbot/logbot/internal/llm/llmtest"
	"github.com/logbot/logbot/internal/logstore"
	"github.com/logbot/logbot/internal/summarizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failedSQL = logstore.SQLQuery("SELECT function_name FROM execution_logs WHERE status = 'FAILED'")

func TestFormatRows(t *testing.T) {
	rs := &logstore.ResultSet{
		Columns: []string{"function_name", "avg", "n", "note"},
		Rows: [][]any{
			{"auth_user", 914.0, int64(1), nil},
			{"it's", 476.5, int64(2), true},
		},
	}
	assert.Equal(t,
		`[('auth_user', 914.0, 1, None), ("it's", 476.5, 2, True)]`,
		summarizer.FormatRows(rs))

	single := &logstore.ResultSet{Columns: []string{"function_name"}, Rows: [][]any{{"auth_user"}}}
	assert.Equal(t, `[('auth_user',)]`, summarizer.FormatRows(single))
	assert.Equal(t, "[]", summarizer.FormatRows(&logstore.ResultSet{Columns: []string{"x"}}))
}

func TestSummarizeCallsModel(t *testing.T) {
	m := &llmtest.Model{CompleteText: "  Only auth_user failed.\n"}
	s := summarizer.New(m)
	rs := &logstore.ResultSet{Columns: []string{"function_name"}, Rows: [][]any{{"auth_user"}}}

	out, err := s.Summarize(context.Background(), "Which functions failed?", failedSQL, rs)
	require.NoError(t, err)
	assert.Equal(t, "Only auth_user failed.", out)

	require.Len(t, m.CompletePrompts, 1)
	p := m.CompletePrompts[0]
	assert.Contains(t, p, "User Question: Which functions failed?\n")
	assert.Contains(t, p, "SQL Query: "+string(failedSQL)+"\n")
	assert.Contains(t, p, "SQL Result: [('auth_user',)]\n")
	assert.Less(t, utf8.RuneCountInString(p), summarizer.DefaultCutoff)
}

func TestSummarizeLargeResultSkipsModel(t *testing.T) {
	m := &llmtest.Model{CompleteText: "should not be used"}
	s := summarizer.New(m)

	rs := &logstore.ResultSet{Columns: []string{"request_id"}}
	for len(summarizer.BuildPrompt("Which functions failed?", failedSQL, rs)) < 950 {
		rs.Rows = append(rs.Rows, []any{fmt.Sprintf("req-%08x", len(rs.Rows))})
	}
	require.GreaterOrEqual(t, utf8.RuneCountInString(summarizer.BuildPrompt("Which functions failed?", failedSQL, rs)), 950)

	out, err := s.Summarize(context.Background(), "Which functions failed?", failedSQL, rs)
	require.NoError(t, err)
	assert.Equal(t, "The data is shown below", out)

	complete, _ := m.Calls()
	assert.Zero(t, complete)
}

func TestSummarizeCustomCutoff(t *testing.T) {
	m := &llmtest.Model{CompleteText: "x"}
	s := summarizer.New(m, summarizer.WithCutoff(10), summarizer.WithPlaceholder("See the table."))
	out, err := s.Summarize(context.Background(), "q", "SELECT 1", &logstore.ResultSet{Columns: []string{"1"}, Rows: [][]any{{int64(1)}}})
	require.NoError(t, err)
	assert.Equal(t, "See the table.", out)
}

func TestSummarizeModelError(t *testing.T) {
	boom := errors.New("upstream timeout")
	s := summarizer.New(&llmtest.Model{CompleteErr: boom})
	_, err := s.Summarize(context.Background(), "q", "SELECT 1", &logstore.ResultSet{Columns: []string{"1"}})
	assert.ErrorIs(t, err, boom)
}

// questionOfLength pads the question so the prompt is exactly n runes long.
// The padding is multi-byte so a byte count would overshoot.
func questionOfLength(t *testing.T, n int, rs *logstore.ResultSet) string {
	t.Helper()
	base := utf8.RuneCountInString(summarizer.BuildPrompt("", failedSQL, rs))
	require.Less(t, base, n)
	q := strings.Repeat("é", n-base)
	require.Equal(t, n, utf8.RuneCountInString(summarizer.BuildPrompt(q, failedSQL, rs)))
	return q
}

func TestSummarizeCutoffBoundary(t *testing.T) {
	rs := &logstore.ResultSet{Columns: []string{"function_name"}, Rows: [][]any{{"auth_user"}}}

	tests := []struct {
		name      string
		length    int
		wantModel bool
	}{
		{"one below cutoff", summarizer.DefaultCutoff - 1, true},
		{"at cutoff", summarizer.DefaultCutoff, false},
		{"one above cutoff", summarizer.DefaultCutoff + 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &llmtest.Model{CompleteText: "auth_user failed."}
			s := summarizer.New(m)

			out, err := s.Summarize(context.Background(), questionOfLength(t, tt.length, rs), failedSQL, rs)
			require.NoError(t, err)

			complete, _ := m.Calls()
			if tt.wantModel {
				assert.Equal(t, 1, complete)
				assert.Equal(t, "auth_user failed.", out)
			} else {
				assert.Zero(t, complete)
				assert.Equal(t, summarizer.DefaultPlaceholder, out)
			}
		})
	}
}
