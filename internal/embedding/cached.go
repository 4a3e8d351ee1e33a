package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrBatchSize is returned when an embedder answers a batch with a different
// number of vectors than texts.
var ErrBatchSize = errors.New("embedding: batch size mismatch")

// Cached memoizes embeddings by exact text. Concurrent requests for the same
// text share one call to the wrapped embedder.
type Cached struct {
	inner   Embedder
	maxSize int

	mu    sync.RWMutex
	store map[string][]float32
	sf    singleflight.Group
}

// NewCached wraps inner. Once maxSize entries are held the cache stops
// growing; maxSize <= 0 means unbounded.
func NewCached(inner Embedder, maxSize int) *Cached {
	return &Cached{inner: inner, maxSize: maxSize, store: make(map[string][]float32)}
}

func (c *Cached) get(text string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[text]
	return v, ok
}

func (c *Cached) set(text string, v []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxSize > 0 && len(c.store) >= c.maxSize {
		return
	}
	c.store[text] = v
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.get(text); ok {
		return v, nil
	}
	res, err, _ := c.sf.Do(text, func() (interface{}, error) {
		if v, ok := c.get(text); ok {
			return v, nil
		}
		v, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.set(text, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]float32), nil
}

// EmbedBatch embeds the uncached texts in one call to the wrapped embedder.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var idx []int
	for i, t := range texts {
		if v, ok := c.get(t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		idx = append(idx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	vs, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vs) != len(missing) {
		return nil, fmt.Errorf("%w: %d vectors for %d texts", ErrBatchSize, len(vs), len(missing))
	}
	for j, v := range vs {
		out[idx[j]] = v
		c.set(missing[j], v)
	}
	return out, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *Cached) Close() error {
	return c.inner.Close()
}
