package models

import "strings"

// MaxQuestionLength caps the question accepted by the chat endpoints.
const MaxQuestionLength = 2000

// ChatRequest for POST /api/v1/chat/sessions/{id}/messages
type ChatRequest struct {
	Question string `json:"question"`
}

// Normalize trims the question and reports a problem, or "".
func (r *ChatRequest) Normalize() string {
	r.Question = strings.TrimSpace(r.Question)
	switch {
	case r.Question == "":
		return "question is required"
	case len(r.Question) > MaxQuestionLength:
		return "question is too long"
	}
	return ""
}

// QueryRequest for POST /api/v1/query (direct SQL)
type QueryRequest struct {
	SQL       string `json:"sql"`
	TimeoutMs int    `json:"timeout_ms"`
}

func (r *QueryRequest) SetDefaults() {
	if r.TimeoutMs == 0 {
		r.TimeoutMs = 30000
	}
	if r.TimeoutMs < 1000 {
		r.TimeoutMs = 1000
	}
	if r.TimeoutMs > 300000 {
		r.TimeoutMs = 300000
	}
}
