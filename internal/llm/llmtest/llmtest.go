// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/logbot/logbot/internal/llm"
)

// Model replies with fixed outputs and records every prompt it receives.
type Model struct {
	CompleteText string
	CompleteErr  error
	// CompleteFunc, when set, overrides CompleteText and CompleteErr.
	CompleteFunc func(prompt string) (string, error)

	Query    llm.QueryOutput
	QueryErr error

	mu              sync.Mutex
	CompletePrompts []string
	QueryPrompts    []string
}

func (m *Model) Name() string { return "llmtest" }

func (m *Model) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.CompletePrompts = append(m.CompletePrompts, prompt)
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(prompt)
	}
	return m.CompleteText, m.CompleteErr
}

func (m *Model) GenerateQuery(_ context.Context, prompt string) (llm.QueryOutput, error) {
	m.mu.Lock()
	m.QueryPrompts = append(m.QueryPrompts, prompt)
	m.mu.Unlock()
	return m.Query, m.QueryErr
}

// Calls returns the number of Complete and GenerateQuery calls made so far.
func (m *Model) Calls() (complete, query int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompletePrompts), len(m.QueryPrompts)
}
