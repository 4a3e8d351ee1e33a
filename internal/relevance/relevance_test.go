package relevance_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/logbot/logbot/internal/hfinference"
	"github.com/logbot/logbot/internal/llm/llmtest"
	"github.com/logbot/logbot/internal/logschema"
	"github.com/logbot/logbot/internal/relevance"
)

// topicEmbedder maps anything mentioning an off-topic word to one axis and
// everything else to the other.
type topicEmbedder struct {
	mu      sync.Mutex
	seen    []string
	batches int
}

func (e *topicEmbedder) vec(text string) []float32 {
	if strings.Contains(strings.ToLower(text), "weather") {
		return []float32{0, 1}
	}
	return []float32{1, 0}
}

func (e *topicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.seen = append(e.seen, text)
	e.mu.Unlock()
	return e.vec(text), nil
}

func (e *topicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batches++
	e.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vec(t)
	}
	return out, nil
}

func (e *topicEmbedder) Close() error { return nil }

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Get the LAST 10 error logs":      "get the last N error logs",
		"List functions by user ID 12345": "list functions by user id N",
		"user_12 made 3 calls":            "user_12 made N calls",
		"Blocked in the last 24 hours?":   "blocked in the last N hours?",
	}
	for in, want := range cases {
		if got := relevance.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmbeddingClassifier(t *testing.T) {
	ctx := context.Background()
	e := &topicEmbedder{}
	c, err := relevance.NewEmbeddingClassifier(ctx, e, relevance.EmbeddingThreshold)
	if err != nil {
		t.Fatalf("NewEmbeddingClassifier: %v", err)
	}
	if e.batches != 1 {
		t.Fatalf("bank should be embedded once at construction, got %d batches", e.batches)
	}

	ok, err := c.IsLogQuery(ctx, "Which functions failed?")
	if err != nil || !ok {
		t.Errorf("expected log query, got %v (err %v)", ok, err)
	}
	ok, err = c.IsLogQuery(ctx, "What's the weather like in Paris today?")
	if err != nil || ok {
		t.Errorf("expected non-log query, got %v (err %v)", ok, err)
	}

	if _, err := c.IsLogQuery(ctx, "Get the last 10 error logs"); err != nil {
		t.Fatal(err)
	}
	if last := e.seen[len(e.seen)-1]; last != "get the last N error logs" {
		t.Errorf("question should be normalized before embedding, got %q", last)
	}
	if e.batches != 1 {
		t.Errorf("bank re-embedded per question: %d batches", e.batches)
	}
}

func TestEmbeddingClassifierIdempotent(t *testing.T) {
	ctx := context.Background()
	c, err := relevance.NewEmbeddingClassifier(ctx, &topicEmbedder{}, relevance.EmbeddingThreshold)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{"Show me all failed login attempts.", "weather tomorrow?"} {
		first, _ := c.IsLogQuery(ctx, q)
		for i := 0; i < 5; i++ {
			if got, _ := c.IsLogQuery(ctx, q); got != first {
				t.Fatalf("decision for %q changed on call %d", q, i)
			}
		}
	}
}

func TestEmbeddingChartGateSkipsNormalization(t *testing.T) {
	ctx := context.Background()
	e := &topicEmbedder{}
	g, err := relevance.NewEmbeddingChartGate(ctx, e, relevance.ChartThreshold)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := g.WantsChart(ctx, "Plot failures over the last 7 days")
	if err != nil || !ok {
		t.Errorf("expected chart, got %v (err %v)", ok, err)
	}
	if e.seen[0] != "Plot failures over the last 7 days" {
		t.Errorf("chart gate should embed the raw question, got %q", e.seen[0])
	}
}

type fakeScorer struct {
	scores []hfinference.LabelScore
	err    error
}

func (f fakeScorer) ZeroShot(context.Context, string, string, []string) ([]hfinference.LabelScore, error) {
	return f.scores, f.err
}

func TestZeroShotClassifier(t *testing.T) {
	tests := []struct {
		name   string
		scores []hfinference.LabelScore
		want   bool
	}{
		{"confident log", []hfinference.LabelScore{{Label: "log_query", Score: 0.9}, {Label: "non_log_query", Score: 0.1}}, true},
		{"weak log", []hfinference.LabelScore{{Label: "log_query", Score: 0.7}, {Label: "non_log_query", Score: 0.3}}, false},
		{"non log", []hfinference.LabelScore{{Label: "non_log_query", Score: 0.8}, {Label: "log_query", Score: 0.2}}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := relevance.NewZeroShotClassifier(fakeScorer{scores: tt.scores}, "", relevance.ZeroShotThreshold)
			got, err := c.IsLogQuery(context.Background(), "q")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	boom := errors.New("503")
	c := relevance.NewZeroShotClassifier(fakeScorer{err: boom}, "", relevance.ZeroShotThreshold)
	if _, err := c.IsLogQuery(context.Background(), "q"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestPromptClassifier(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"log_query", true},
		{"  log_query\n", true},
		{"non_log_query", false},
		{"Log_query", false},
		{"log_query.", false},
	}
	for _, tt := range tests {
		m := &llmtest.Model{CompleteText: tt.reply}
		c := relevance.NewPromptClassifier(m, logschema.Default())
		got, err := c.IsLogQuery(context.Background(), "Which functions failed?")
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("reply %q: got %v, want %v", tt.reply, got, tt.want)
		}
	}

	m := &llmtest.Model{CompleteText: "log_query"}
	_, _ = relevance.NewPromptClassifier(m, logschema.Default()).IsLogQuery(context.Background(), "Which functions failed?")
	p := m.CompletePrompts[0]
	for _, want := range []string{
		`Query: "Which functions failed?"`,
		"1. vpc_logs(timestamp, src_ip, dst_ip, action, bytes_sent, request_id)",
		"req-fc133d2e",
		logschema.AggregateQuestions[0],
		logschema.LogQuestions[len(logschema.LogQuestions)-1],
		"Only return one word",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "req-7af7bf97") {
		t.Error("prompt should carry only two sample rows per table")
	}
}

func TestKeywordClassifier(t *testing.T) {
	c := relevance.NewKeywordClassifier()
	relevant := []string{
		"Which functions failed?",
		"Which users triggered rejected VPC actions?",
		"Top destinations from VPC logs?",
		"Show logs where status code is 500.",
	}
	for _, q := range relevant {
		if res := c.Score(q); !res.Relevant {
			t.Errorf("expected relevant for %q (%s)", q, res.Reasoning)
		}
	}
	offTopic := []string{
		"What's the weather like in Paris today?",
		"What is the capital of France?",
		"Tell me a joke",
	}
	for _, q := range offTopic {
		if res := c.Score(q); res.Relevant {
			t.Errorf("expected off-topic for %q (log %d, off %d)", q, res.LogScore, res.OffScore)
		}
	}
}

func TestKeywordChartGate(t *testing.T) {
	g := relevance.NewKeywordChartGate()
	for q, want := range map[string]bool{
		"Plot the number of requests rejected per day": true,
		"Visualize traffic per source IP":              true,
		"Which functions failed?":                      false,
	} {
		if got, _ := g.WantsChart(context.Background(), q); got != want {
			t.Errorf("WantsChart(%q) = %v, want %v", q, got, want)
		}
	}
}

func TestNewStrategies(t *testing.T) {
	ctx := context.Background()
	deps := relevance.Deps{
		Embedder: &topicEmbedder{},
		ZeroShot: fakeScorer{},
		Model:    &llmtest.Model{},
	}
	for _, s := range []relevance.Strategy{
		relevance.StrategyEmbedding, relevance.StrategyZeroShot,
		relevance.StrategyLLM, relevance.StrategyKeyword,
	} {
		if c, err := relevance.New(ctx, s, deps); err != nil || c == nil {
			t.Errorf("New(%s) failed: %v", s, err)
		}
	}

	if _, err := relevance.New(ctx, "ensemble", deps); !errors.Is(err, relevance.ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
	if _, err := relevance.New(ctx, relevance.StrategyEmbedding, relevance.Deps{}); err == nil {
		t.Error("embedding strategy without embedder should fail")
	}

	gate, err := relevance.NewChartGate(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gate.(*relevance.KeywordChartGate); !ok {
		t.Errorf("nil embedder should select keyword chart gate, got %T", gate)
	}
}
