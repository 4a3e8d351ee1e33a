package relevance

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/logbot/logbot/internal/embedding"
	"github.com/logbot/logbot/internal/logschema"
	"github.com/rs/zerolog/log"
)

var reNumber = regexp.MustCompile(`\b\d+\b`)

// Normalize lowercases question and replaces standalone digit runs with "N".
func Normalize(question string) string {
	return reNumber.ReplaceAllString(strings.ToLower(question), "N")
}

// similarity matches text against a bank of reference phrasings.
type similarity struct {
	embedder  embedding.Embedder
	bank      [][]float32
	threshold float64
}

func newSimilarity(ctx context.Context, e embedding.Embedder, examples []string, threshold float64) (*similarity, error) {
	bank, err := e.EmbedBatch(ctx, examples)
	if err != nil {
		return nil, fmt.Errorf("embed reference bank: %w", err)
	}
	if len(bank) == 0 {
		return nil, embedding.ErrEmptyBank
	}
	return &similarity{embedder: e, bank: bank, threshold: threshold}, nil
}

// match reports whether text is strictly above threshold, and the score.
func (s *similarity) match(ctx context.Context, text string) (bool, float64, error) {
	v, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return false, 0, err
	}
	score, _, err := embedding.MaxSimilarity(v, s.bank)
	if err != nil {
		return false, 0, err
	}
	return score > s.threshold, score, nil
}

// EmbeddingClassifier compares the normalized question with the log
// question bank.
type EmbeddingClassifier struct {
	sim *similarity
}

func NewEmbeddingClassifier(ctx context.Context, e embedding.Embedder, threshold float64) (*EmbeddingClassifier, error) {
	sim, err := newSimilarity(ctx, e, logschema.LogQuestions, threshold)
	if err != nil {
		return nil, err
	}
	return &EmbeddingClassifier{sim: sim}, nil
}

func (c *EmbeddingClassifier) IsLogQuery(ctx context.Context, question string) (bool, error) {
	ok, score, err := c.sim.match(ctx, Normalize(question))
	if err != nil {
		return false, fmt.Errorf("relevance: %w", err)
	}
	log.Debug().Float64("score", score).Bool("relevant", ok).Msg("log relevance")
	return ok, nil
}

// EmbeddingChartGate compares the raw question with the chart request bank.
type EmbeddingChartGate struct {
	sim *similarity
}

func NewEmbeddingChartGate(ctx context.Context, e embedding.Embedder, threshold float64) (*EmbeddingChartGate, error) {
	sim, err := newSimilarity(ctx, e, logschema.ChartQuestions, threshold)
	if err != nil {
		return nil, err
	}
	return &EmbeddingChartGate{sim: sim}, nil
}

func (g *EmbeddingChartGate) WantsChart(ctx context.Context, question string) (bool, error) {
	ok, score, err := g.sim.match(ctx, question)
	if err != nil {
		return false, fmt.Errorf("chart relevance: %w", err)
	}
	log.Debug().Float64("score", score).Bool("chart", ok).Msg("chart relevance")
	return ok, nil
}
