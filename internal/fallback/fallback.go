// Package fallback answers turns the SQL pipeline cannot: off-topic
// questions and pipeline failures.
package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/logbot/logbot/internal/llm"
	"github.com/rs/zerolog/log"
)

// Mode selects the fallback prompt.
type Mode int

const (
	// ModeNormal answers a question conversationally and steers the user
	// back to the logs.
	ModeNormal Mode = iota
	// ModeError rewrites an error message as a short human sentence.
	ModeError
)

func (m Mode) String() string {
	if m == ModeError {
		return "error"
	}
	return "normal"
}

// Apology is returned when the model fails while explaining an error.
const Apology = "Sorry, something went wrong while answering your question. Please try rephrasing it or ask something about the logs."

type Responder struct {
	model llm.Model
}

func New(model llm.Model) *Responder {
	return &Responder{model: model}
}

// Answer replies to text in the given mode. In ModeError a model failure
// yields Apology and no error.
func (r *Responder) Answer(ctx context.Context, text string, mode Mode) (string, error) {
	out, err := r.model.Complete(ctx, Prompt(text, mode))
	if err == nil {
		out = strings.TrimSpace(out)
	}
	if err != nil || out == "" {
		if mode == ModeError {
			log.Warn().Err(err).Msg("error explanation failed, using apology")
			return Apology, nil
		}
		if err == nil {
			err = llm.ErrEmptyResponse
		}
		return "", fmt.Errorf("fallback answer: %w", err)
	}
	return out, nil
}

// Prompt renders the fallback prompt for mode.
func Prompt(text string, mode Mode) string {
	var b strings.Builder
	if mode == ModeError {
		b.WriteString("You are an assistant that turns error messages into understandable sentences.\n")
		b.WriteString("You are given an error message and you need to convert it into an understandable sentence.\n")
		b.WriteString("You should only answer the question, and not provide any other information.\n")
		b.WriteString("Do not reveal any sensitive or private information.\n")
		b.WriteString("Give a short summary of the error message, at most 2 lines.\n")
		b.WriteString("The answer should read like a reply from a human.\n")
		fmt.Fprintf(&b, "The error: %s\n", text)
		return b.String()
	}
	b.WriteString("You are logbot, a trustworthy log analysis assistant.\n")
	b.WriteString("Given the following user question, answer it as best as you can.\n")
	b.WriteString("You should only answer the question, and not provide any other information.\n")
	b.WriteString("Do not reveal any sensitive or private information. ")
	b.WriteString("If the question is not related to the logs, say that you cannot help with that and invite the user to ask questions about the logs, since that is what you are made for.\n")
	fmt.Fprintf(&b, "User Question: %s\n", text)
	return b.String()
}
