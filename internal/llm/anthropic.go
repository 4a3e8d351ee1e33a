package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

const DefaultAnthropicModel = "claude-sonnet-4-6"

// Anthropic calls the Messages API, or a compatible proxy when baseURL is set.
type Anthropic struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

func NewAnthropic(apiKey, model, baseURL string, maxTokens int) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (a *Anthropic) Name() string { return "anthropic/" + a.model }

func (a *Anthropic) params(prompt string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(a.model)),
		MaxTokens: anthropic.F(int64(a.maxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		}),
	}
}

// Complete returns the concatenated text blocks of a single reply.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Messages.New(ctx, a.params(prompt))
	if err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// GenerateQuery offers the emit_sql_query tool and reads its input. Text the
// model writes instead is returned in QueryOutput.Text.
func (a *Anthropic) GenerateQuery(ctx context.Context, prompt string) (QueryOutput, error) {
	params := a.params(prompt)
	params.Tools = anthropic.F([]anthropic.ToolUnionUnionParam{
		anthropic.ToolParam{
			Name:        anthropic.String(QueryToolName),
			Description: anthropic.String(queryToolDescription),
			InputSchema: anthropic.F[interface{}](querySchema()),
		},
	})

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return QueryOutput{}, fmt.Errorf("llm: %w", err)
	}

	var out QueryOutput
	var text strings.Builder
	for _, block := range resp.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			if b.Name != QueryToolName {
				continue
			}
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(b.Input, &in); err != nil {
				log.Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
				continue
			}
			out.Query = in.Query
		}
	}
	out.Text = text.String()

	log.Debug().
		Str("model", a.model).
		Str("stop_reason", string(resp.StopReason)).
		Bool("structured", out.Query != "").
		Msg("query generated")

	if out.Query == "" && strings.TrimSpace(out.Text) == "" {
		return out, ErrEmptyResponse
	}
	return out, nil
}
