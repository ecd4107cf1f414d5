package searchindex

import (
	"context"

	"github.com/rkwai/rag-system/internal/model"
)

// Index provides nearest-neighbour search over memory embeddings.
//
// The index is not assumed to support tenant scoping: Query returns matches
// across players and callers post-filter on the payload's playerId. Payloads
// stored at insert time are returned verbatim with each match.
type Index interface {
	Insert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error
	Query(ctx context.Context, vec []float32, topK int) ([]model.IndexMatch, error)
}
