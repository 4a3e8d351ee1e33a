package fallback_test

import (
	"context"
	"errors"
	"testing"

	"github.com/logbot/logbot/internal/fallback"
	"github.com/logbot/logbot/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerNormal(t *testing.T) {
	m := &llmtest.Model{CompleteText: " I can only help with questions about the logs. \n"}
	out, err := fallback.New(m).Answer(context.Background(), "What's the weather like?", fallback.ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, "I can only help with questions about the logs.", out)

	require.Len(t, m.CompletePrompts, 1)
	assert.Contains(t, m.CompletePrompts[0], "User Question: What's the weather like?")
	assert.Contains(t, m.CompletePrompts[0], "log analysis assistant")
}

func TestAnswerErrorMode(t *testing.T) {
	m := &llmtest.Model{CompleteText: "The query referred to a table that does not exist."}
	out, err := fallback.New(m).Answer(context.Background(), "execute query: no such table: logs", fallback.ModeError)
	require.NoError(t, err)
	assert.Equal(t, "The query referred to a table that does not exist.", out)
	assert.Contains(t, m.CompletePrompts[0], "The error: execute query: no such table: logs")
	assert.Contains(t, m.CompletePrompts[0], "2 lines")
}

func TestAnswerErrorModeModelFailure(t *testing.T) {
	for _, m := range []*llmtest.Model{
		{CompleteErr: errors.New("503 from provider")},
		{CompleteText: "   "},
	} {
		out, err := fallback.New(m).Answer(context.Background(), "boom", fallback.ModeError)
		require.NoError(t, err)
		assert.Equal(t, fallback.Apology, out)
	}
}

func TestAnswerNormalModelFailure(t *testing.T) {
	boom := errors.New("503 from provider")
	_, err := fallback.New(&llmtest.Model{CompleteErr: boom}).Answer(context.Background(), "hi", fallback.ModeNormal)
	assert.ErrorIs(t, err, boom)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "normal", fallback.ModeNormal.String())
	assert.Equal(t, "error", fallback.ModeError.String())
}
