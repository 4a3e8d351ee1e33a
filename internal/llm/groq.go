package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "gemma2-9b-it"
)

// OpenAICompatible talks to any /chat/completions endpoint that follows the
// OpenAI wire format (Groq by default).
type OpenAICompatible struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAICompatible builds a client for baseURL. Extra request options are
// applied last.
func NewOpenAICompatible(baseURL, apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *OpenAICompatible {
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	if model == "" {
		model = DefaultGroqModel
	}
	base := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	}
	if timeout > 0 {
		base = append(base, option.WithRequestTimeout(timeout))
	}
	return &OpenAICompatible{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}
}

func (o *OpenAICompatible) Name() string { return "openai-compatible/" + o.model }

func (o *OpenAICompatible) params(prompt string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(o.temperature),
	}
}

func (o *OpenAICompatible) chat(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletionMessage, error) {
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &resp.Choices[0].Message, nil
}

func (o *OpenAICompatible) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := o.chat(ctx, o.params(prompt))
	if err != nil {
		return "", err
	}
	if msg.Content == "" {
		return "", ErrEmptyResponse
	}
	return msg.Content, nil
}

// GenerateQuery forces a call to the emit_sql_query function and decodes
// its arguments.
func (o *OpenAICompatible) GenerateQuery(ctx context.Context, prompt string) (QueryOutput, error) {
	params := o.params(prompt)
	params.Tools = []openai.ChatCompletionToolParam{{
		Function: openai.FunctionDefinitionParam{
			Name:        QueryToolName,
			Description: openai.String(queryToolDescription),
			Parameters:  querySchema(),
		},
	}}
	params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
		OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
			Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: QueryToolName},
		},
	}

	msg, err := o.chat(ctx, params)
	if err != nil {
		return QueryOutput{}, err
	}

	out := QueryOutput{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != QueryToolName {
			continue
		}
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			log.Warn().Err(err).Msg("failed to parse tool arguments")
			continue
		}
		out.Query = args.Query
	}
	if out.Query == "" && out.Text == "" {
		return out, ErrEmptyResponse
	}
	return out, nil
}
