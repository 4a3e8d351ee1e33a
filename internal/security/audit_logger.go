package security

import (
	"time"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs security-relevant events. Questions, SQL and client keys
// are hashed, never logged verbatim.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// TurnEvent is the audit record of one chat turn.
type TurnEvent struct {
	SessionID string
	ClientKey string
	Question  string
	SQL       string
	Relevant  bool
	Blocked   bool
	Outcome   string
	RowCount  int
	Duration  time.Duration
	Err       error
}

// LogTurn records a chat turn.
func (a *AuditLogger) LogTurn(e TurnEvent) {
	if !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "turn_audit").
		Str("session_id", e.SessionID).
		Str("prompt_hash", shortHash(e.Question)).
		Str("client_hash", shortHash(e.ClientKey)).
		Str("sql_hash", shortHash(e.SQL)).
		Bool("relevant", e.Relevant).
		Bool("blocked", e.Blocked).
		Str("outcome", e.Outcome).
		Int("row_count", e.RowCount).
		Int64("duration_ms", e.Duration.Milliseconds())
	if e.Err != nil {
		evt = evt.Str("error", e.Err.Error())
	}
	evt.Msg("audit")
}

// LogQuery records a direct query execution.
func (a *AuditLogger) LogQuery(sql, clientKey string, executionTimeMs int64, rowCount int, success bool, errMsg string) {
	if !a.enabled {
		return
	}
	evt := log.Info().
		Str("event", "query_audit").
		Str("sql_hash", shortHash(sql)).
		Str("client_hash", shortHash(clientKey)).
		Int64("execution_time_ms", executionTimeMs).
		Int("row_count", rowCount).
		Bool("success", success)
	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

// shortHash returns the first 16 hex chars of sha256(s), or "" for "".
func shortHash(s string) string {
	if s == "" {
		return ""
	}
	return hashStr(s)[:16]
}
