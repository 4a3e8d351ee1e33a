package models

import (
	"time"

	"github.com/logbot/logbot/internal/charts"
	"github.com/logbot/logbot/internal/chat"
	"github.com/logbot/logbot/internal/logstore"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// SessionResponse is returned by POST /api/v1/chat/sessions
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnView is one transcript entry.
type TurnView struct {
	Role      string             `json:"role"`
	Text      string             `json:"text"`
	SQL       string             `json:"sql,omitempty"`
	Columns   []string           `json:"columns,omitempty"`
	Rows      [][]any            `json:"rows,omitempty"`
	Charts    []charts.ChartSpec `json:"charts,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// TranscriptResponse is returned by GET /api/v1/chat/sessions/{id}
type TranscriptResponse struct {
	SessionID string     `json:"session_id"`
	CreatedAt time.Time  `json:"created_at"`
	Turns     []TurnView `json:"turns"`
}

func NewTranscript(sess *chat.Session) TranscriptResponse {
	turns := sess.Turns()
	out := TranscriptResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
		Turns:     make([]TurnView, 0, len(turns)),
	}
	for _, t := range turns {
		v := TurnView{
			Role:      string(t.Role),
			Text:      t.Text,
			SQL:       t.SQL,
			Charts:    t.Charts,
			CreatedAt: t.CreatedAt,
		}
		if t.Result != nil {
			v.Columns, v.Rows = t.Result.Columns, t.Result.Rows
		}
		out.Turns = append(out.Turns, v)
	}
	return out
}

// ChatResponse is returned by POST /api/v1/chat/sessions/{id}/messages
type ChatResponse struct {
	Status    string             `json:"status"`
	SessionID string             `json:"session_id"`
	Answer    string             `json:"answer"`
	SQL       string             `json:"sql,omitempty"`
	Columns   []string           `json:"columns,omitempty"`
	Rows      [][]any            `json:"rows,omitempty"`
	Charts    []charts.ChartSpec `json:"charts,omitempty"`
	Figures   []*charts.Figure   `json:"figures,omitempty"`
	Relevant  bool               `json:"relevant"`
	Outcome   string             `json:"outcome"`
}

func NewChatResponse(r *chat.Reply) ChatResponse {
	out := ChatResponse{
		Status:    "success",
		SessionID: r.SessionID,
		Answer:    r.Answer,
		SQL:       r.SQL,
		Charts:    r.Charts,
		Figures:   r.Figures,
		Relevant:  r.Relevant,
		Outcome:   string(r.Outcome),
	}
	if r.Result != nil {
		out.Columns, out.Rows = r.Result.Columns, r.Result.Rows
	}
	return out
}

// QueryMetadata describes a direct query execution.
type QueryMetadata struct {
	Dialect         string   `json:"dialect"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	MaskedColumns   []string `json:"masked_columns,omitempty"`
}

// QueryResponse is returned by POST /api/v1/query
type QueryResponse struct {
	Status   string        `json:"status"`
	Columns  []string      `json:"columns"`
	Rows     [][]any       `json:"rows"`
	RowCount int           `json:"row_count"`
	Metadata QueryMetadata `json:"metadata"`
}

func NewQueryResponse(rs *logstore.ResultSet, meta QueryMetadata) QueryResponse {
	return QueryResponse{
		Status:   "success",
		Columns:  rs.Columns,
		Rows:     rs.Rows,
		RowCount: rs.Len(),
		Metadata: meta,
	}
}

// ColumnInfo describes one column of a log table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableInfo describes one log table.
type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

// SchemaResponse is returned by GET /api/v1/schema
type SchemaResponse struct {
	Status      string      `json:"status"`
	Description string      `json:"description"`
	JoinKey     string      `json:"join_key"`
	Tables      []TableInfo `json:"tables"`
}
