package relevance

import (
	"context"
	"fmt"

	"github.com/logbot/logbot/internal/hfinference"
)

const (
	LabelLogQuery    = "log_query"
	LabelNonLogQuery = "non_log_query"
)

// ZeroShotScorer scores text against candidate labels, best first.
type ZeroShotScorer interface {
	ZeroShot(ctx context.Context, model, text string, labels []string) ([]hfinference.LabelScore, error)
}

type ZeroShotClassifier struct {
	scorer    ZeroShotScorer
	model     string
	threshold float64
}

func NewZeroShotClassifier(scorer ZeroShotScorer, model string, threshold float64) *ZeroShotClassifier {
	if model == "" {
		model = hfinference.DefaultZeroShotModel
	}
	return &ZeroShotClassifier{scorer: scorer, model: model, threshold: threshold}
}

// IsLogQuery is true iff log_query is the top label and scores above the
// threshold.
func (c *ZeroShotClassifier) IsLogQuery(ctx context.Context, question string) (bool, error) {
	scores, err := c.scorer.ZeroShot(ctx, c.model, question, []string{LabelLogQuery, LabelNonLogQuery})
	if err != nil {
		return false, fmt.Errorf("relevance: %w", err)
	}
	if len(scores) == 0 {
		return false, nil
	}
	top := scores[0]
	return top.Label == LabelLogQuery && top.Score > c.threshold, nil
}
