// Package hfinference calls the hosted Hugging Face inference endpoints for
// sentence embeddings and zero-shot classification.
package hfinference

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/logbot/logbot/internal/httpclient"
)

const (
	DefaultBaseURL        = "https://router.huggingface.co/hf-inference"
	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultZeroShotModel  = "facebook/bart-large-mnli"
)

type Client struct {
	http *httpclient.Client
}

// New creates a client for baseURL authenticated with token.
func New(baseURL, token string, timeout time.Duration, opts ...httpclient.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout > 0 {
		opts = append([]httpclient.Option{httpclient.WithTimeout(timeout)}, opts...)
	}
	return &Client{http: httpclient.New(baseURL, token, opts...)}
}

// FeatureExtraction returns one sentence vector per input.
func (c *Client) FeatureExtraction(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	var out [][]float32
	path := fmt.Sprintf("/models/%s/pipeline/feature-extraction", model)
	if err := c.http.PostJSON(ctx, path, map[string]any{"inputs": inputs}, &out); err != nil {
		return nil, fmt.Errorf("feature extraction: %w", err)
	}
	if len(out) != len(inputs) {
		return nil, fmt.Errorf("feature extraction: got %d vectors for %d inputs", len(out), len(inputs))
	}
	return out, nil
}

// LabelScore is one candidate label and its probability.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ZeroShot scores text against labels, highest score first.
func (c *Client) ZeroShot(ctx context.Context, model, text string, labels []string) ([]LabelScore, error) {
	body := map[string]any{
		"inputs":     text,
		"parameters": map[string]any{"candidate_labels": labels},
	}
	var raw json.RawMessage
	if err := c.http.PostJSON(ctx, "/models/"+model, body, &raw); err != nil {
		return nil, fmt.Errorf("zero-shot: %w", err)
	}
	scores, err := parseZeroShot(raw)
	if err != nil {
		return nil, fmt.Errorf("zero-shot: %w", err)
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores, nil
}

// parseZeroShot accepts both the list form [{label, score}] and the legacy
// {sequence, labels, scores} form.
func parseZeroShot(raw json.RawMessage) ([]LabelScore, error) {
	var list []LabelScore
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var legacy struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(legacy.Labels) != len(legacy.Scores) {
		return nil, fmt.Errorf("labels and scores differ in length")
	}
	out := make([]LabelScore, len(legacy.Labels))
	for i := range legacy.Labels {
		out[i] = LabelScore{Label: legacy.Labels[i], Score: legacy.Scores[i]}
	}
	return out, nil
}

// Embedder adapts FeatureExtraction to embedding.Embedder.
type Embedder struct {
	client *Client
	model  string
}

func NewEmbedder(client *Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.client.FeatureExtraction(ctx, e.model, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	return vs[0], nil
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vs, err := e.client.FeatureExtraction(ctx, e.model, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	return vs, nil
}

func (e *Embedder) Close() error { return nil }
