// Package embedding turns text into fixed-size vectors and compares them.
package embedding

import (
	"context"
	"errors"
	"math"
)

// ErrEmptyBank is returned when similarity is requested against no vectors.
var ErrEmptyBank = errors.New("embedding: empty reference bank")

// Embedder produces vector embeddings from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MaxSimilarity returns the highest cosine similarity between v and any
// vector in bank, together with its index.
func MaxSimilarity(v []float32, bank [][]float32) (float64, int, error) {
	if len(bank) == 0 {
		return 0, -1, ErrEmptyBank
	}
	best, idx := math.Inf(-1), -1
	for i, b := range bank {
		if s := Cosine(v, b); s > best {
			best, idx = s, i
		}
	}
	return best, idx, nil
}
