// Package chat runs one question through the log pipeline and keeps the
// per-session transcript.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/logbot/logbot/internal/charts"
	"github.com/logbot/logbot/internal/fallback"
	"github.com/logbot/logbot/internal/logstore"
	"github.com/logbot/logbot/internal/relevance"
	"github.com/logbot/logbot/internal/security"
	"github.com/rs/zerolog/log"
)

// Canned replies for questions stopped before any model sees them.
const (
	BlockedReply = "Sorry, I can't process that request. Please ask a question about the logs."
	PIIReply     = "Sorry, I can't help with requests involving personal or sensitive data."
)

// Outcome labels how a turn ended.
type Outcome string

const (
	OutcomeAnswered Outcome = "answered"
	OutcomeGeneral  Outcome = "general"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeError    Outcome = "error"
)

type Translator interface {
	Translate(ctx context.Context, question string) (logstore.SQLQuery, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, question string, query logstore.SQLQuery, result *logstore.ResultSet) (string, error)
}

type Responder interface {
	Answer(ctx context.Context, text string, mode fallback.Mode) (string, error)
}

// Reply is the assistant's answer to one question.
type Reply struct {
	SessionID string              `json:"session_id,omitempty"`
	Answer    string              `json:"answer"`
	SQL       string              `json:"sql,omitempty"`
	Result    *logstore.ResultSet `json:"result,omitempty"`
	Charts    []charts.ChartSpec  `json:"charts,omitempty"`
	Figures   []*charts.Figure    `json:"figures,omitempty"`
	Relevant  bool                `json:"relevant"`
	Outcome   Outcome             `json:"outcome"`
}

// Deps are the long-lived components a Controller drives. Masker, PII and
// Audit may be nil.
type Deps struct {
	Prompts    *security.PromptValidator
	PII        *security.PIIDetector
	Relevance  relevance.Classifier
	ChartGate  relevance.ChartClassifier
	Translator Translator
	Validator  *security.SQLValidator
	Executor   logstore.Executor
	Masker     *security.DataMasker
	Summarizer Summarizer
	Fallback   Responder
	Audit      *security.AuditLogger
}

type Controller struct {
	deps        Deps
	store       *Store
	turnTimeout time.Duration
}

// New validates deps. A zero turnTimeout disables the per-turn deadline.
func New(deps Deps, store *Store, turnTimeout time.Duration) (*Controller, error) {
	switch {
	case deps.Relevance == nil:
		return nil, errors.New("chat: relevance classifier is required")
	case deps.ChartGate == nil:
		return nil, errors.New("chat: chart gate is required")
	case deps.Translator == nil:
		return nil, errors.New("chat: translator is required")
	case deps.Executor == nil:
		return nil, errors.New("chat: executor is required")
	case deps.Summarizer == nil:
		return nil, errors.New("chat: summarizer is required")
	case deps.Fallback == nil:
		return nil, errors.New("chat: fallback responder is required")
	}
	if deps.Prompts == nil {
		deps.Prompts = security.NewPromptValidator(0)
	}
	if deps.Validator == nil {
		deps.Validator = security.NewSQLValidator()
	}
	if deps.Audit == nil {
		deps.Audit = security.NewAuditLogger(false)
	}
	if store == nil {
		store = NewStore()
	}
	return &Controller{deps: deps, store: store, turnTimeout: turnTimeout}, nil
}

func (c *Controller) Store() *Store { return c.store }

// HandleTurn answers question within session sessionID and appends the
// question and the answer to its history. Pipeline failures become an
// assistant message, never an error; the only error is ErrSessionNotFound.
func (c *Controller) HandleTurn(ctx context.Context, sessionID, question string) (*Reply, error) {
	sess, err := c.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.turnMu.Lock()
	defer sess.turnMu.Unlock()

	asked := c.store.now().UTC()
	reply := c.run(ctx, sessionID, question)
	reply.SessionID = sessionID

	sess.append(
		Turn{Role: RoleUser, Text: question, CreatedAt: asked},
		Turn{
			Role:      RoleAssistant,
			Text:      reply.Answer,
			SQL:       reply.SQL,
			Result:    reply.Result,
			Charts:    reply.Charts,
			CreatedAt: c.store.now().UTC(),
		},
	)
	return reply, nil
}

// Ask answers a single question outside any session.
func (c *Controller) Ask(ctx context.Context, question string) *Reply {
	return c.run(ctx, "", question)
}

func (c *Controller) run(ctx context.Context, sessionID, question string) *Reply {
	if c.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.turnTimeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.pipeline(ctx, question)

	evt := security.TurnEvent{
		SessionID: sessionID,
		ClientKey: security.ClientKey(ctx),
		Question:  question,
		SQL:       reply.SQL,
		Relevant:  reply.Relevant,
		Blocked:   reply.Outcome == OutcomeBlocked,
		RowCount:  reply.Result.Len(),
		Err:       err,
	}
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("turn failed")
		reply = &Reply{
			Answer:   c.explain(ctx, err),
			Relevant: reply.Relevant,
			Outcome:  OutcomeError,
		}
	}
	evt.Outcome = string(reply.Outcome)
	evt.Duration = time.Since(start)
	c.deps.Audit.LogTurn(evt)
	return reply
}

// pipeline always returns a non-nil reply. On error the reply carries only
// what is needed for auditing and must not be shown.
func (c *Controller) pipeline(ctx context.Context, question string) (*Reply, error) {
	reply := &Reply{}

	if err := c.deps.Prompts.Check(question); err != nil {
		log.Info().Err(err).Msg("question blocked")
		reply.Answer, reply.Outcome = BlockedReply, OutcomeBlocked
		return reply, nil
	}
	if c.deps.PII != nil {
		if found, what := c.deps.PII.Detect(question); found {
			log.Info().Str("match", what).Msg("question blocked: sensitive data")
			reply.Answer, reply.Outcome = PIIReply, OutcomeBlocked
			return reply, nil
		}
	}

	relevant, err := c.deps.Relevance.IsLogQuery(ctx, question)
	if err != nil {
		return reply, err
	}
	reply.Relevant = relevant
	if !relevant {
		answer, err := c.deps.Fallback.Answer(ctx, question, fallback.ModeNormal)
		if err != nil {
			return reply, err
		}
		reply.Answer, reply.Outcome = answer, OutcomeGeneral
		return reply, nil
	}

	query, err := c.deps.Translator.Translate(ctx, question)
	if err != nil {
		return reply, err
	}
	reply.SQL = string(query)
	if err := c.deps.Validator.Check(reply.SQL); err != nil {
		return reply, err
	}

	result, err := c.deps.Executor.Execute(ctx, query)
	if err != nil {
		return reply, err
	}
	if c.deps.Masker != nil {
		result, _ = c.deps.Masker.MaskResult(result)
	}
	reply.Result = result

	answer, err := c.deps.Summarizer.Summarize(ctx, question, query, result)
	if err != nil {
		return reply, err
	}

	wants, err := c.deps.ChartGate.WantsChart(ctx, question)
	if err != nil {
		return reply, err
	}
	if wants {
		specs := charts.SelectCharts(result)
		figs, err := charts.RenderAll(specs, result)
		if err != nil {
			return reply, err
		}
		reply.Charts, reply.Figures = specs, figs
	}

	reply.Answer, reply.Outcome = answer, OutcomeAnswered
	return reply, nil
}

// explain turns a pipeline error into a short message for the user.
func (c *Controller) explain(ctx context.Context, err error) string {
	// a cancelled turn context would fail the model call outright
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}
	answer, ferr := c.deps.Fallback.Answer(ctx, err.Error(), fallback.ModeError)
	if ferr != nil || answer == "" {
		return fallback.Apology
	}
	return answer
}
