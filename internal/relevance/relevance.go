// Package relevance decides whether a question can be answered from the log
// tables and whether it asks for a visualization.
package relevance

import (
	"context"
	"errors"
	"fmt"

	"github.com/logbot/logbot/internal/embedding"
	"github.com/logbot/logbot/internal/llm"
	"github.com/logbot/logbot/internal/logschema"
)

// Classifier gates the NL→SQL pipeline.
type Classifier interface {
	IsLogQuery(ctx context.Context, question string) (bool, error)
}

// ChartClassifier gates chart selection.
type ChartClassifier interface {
	WantsChart(ctx context.Context, question string) (bool, error)
}

// Strategy names a Classifier implementation.
type Strategy string

const (
	StrategyEmbedding Strategy = "embedding"
	StrategyZeroShot  Strategy = "zeroshot"
	StrategyLLM       Strategy = "llm"
	StrategyKeyword   Strategy = "keyword"
)

// Default thresholds.
const (
	EmbeddingThreshold = 0.5
	ZeroShotThreshold  = 0.7
	ChartThreshold     = 0.5
)

var ErrUnknownStrategy = errors.New("unknown relevance strategy")

// Deps holds the providers a strategy may need. Only the ones the selected
// strategy uses must be set.
type Deps struct {
	Embedder      embedding.Embedder
	ZeroShot      ZeroShotScorer
	ZeroShotModel string
	Model         llm.Model
	Schema        *logschema.Schema
}

// New builds the Classifier for strategy. Embedding banks are computed here,
// once.
func New(ctx context.Context, strategy Strategy, deps Deps) (Classifier, error) {
	switch strategy {
	case StrategyEmbedding:
		if deps.Embedder == nil {
			return nil, fmt.Errorf("%s strategy: no embedder configured", strategy)
		}
		return NewEmbeddingClassifier(ctx, deps.Embedder, EmbeddingThreshold)
	case StrategyZeroShot:
		if deps.ZeroShot == nil {
			return nil, fmt.Errorf("%s strategy: no zero-shot scorer configured", strategy)
		}
		return NewZeroShotClassifier(deps.ZeroShot, deps.ZeroShotModel, ZeroShotThreshold), nil
	case StrategyLLM:
		if deps.Model == nil {
			return nil, fmt.Errorf("%s strategy: no model configured", strategy)
		}
		schema := deps.Schema
		if schema == nil {
			schema = logschema.Default()
		}
		return NewPromptClassifier(deps.Model, schema), nil
	case StrategyKeyword:
		return NewKeywordClassifier(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
}

// NewChartGate returns the embedding chart gate, or the keyword gate when
// embedder is nil.
func NewChartGate(ctx context.Context, embedder embedding.Embedder) (ChartClassifier, error) {
	if embedder == nil {
		return NewKeywordChartGate(), nil
	}
	return NewEmbeddingChartGate(ctx, embedder, ChartThreshold)
}
