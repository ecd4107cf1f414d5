// Package mock provides a deterministic in-process EmbeddingProvider for
// tests and offline development. Vectors are bag-of-words projections, so
// texts sharing tokens land near each other under cosine similarity.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

type Embedder struct {
	dim  int
	fail bool
}

// New creates a mock embedder producing vectors of the given dimension.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = 64
	}
	return &Embedder{dim: dim}
}

// NewFailing creates an embedder whose Embed always errors. Used to exercise
// provider-outage fallback paths.
func NewFailing() *Embedder { return &Embedder{dim: 1, fail: true} }

func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.fail {
		return nil, context.DeadlineExceeded
	}

	vec := make([]float32, m.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?\"'")
		if tok == "" {
			continue
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum64()%uint64(m.dim)] += 1
	}
	return normalize(vec), nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int { return m.dim }

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
