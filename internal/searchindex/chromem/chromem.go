// Package chromem implements the similarity index on chromem-go, a pure Go
// embedded vector database. Used for local development and tests where a
// Weaviate deployment is not available.
package chromem

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/rkwai/rag-system/internal/model"
)

type ChromemIndex struct {
	col *chromem.Collection
	mu  sync.RWMutex
}

// New creates an in-memory chromem index with a single collection.
// chromem metadata values are strings, so numeric payload fields are
// stringified on insert and parsed back on query.
func New() (*ChromemIndex, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("game_memories", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ChromemIndex{col: col}, nil
}

func (s *ChromemIndex) Insert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := make(map[string]string, len(payload))
	content := ""
	for k, v := range payload {
		switch t := v.(type) {
		case string:
			if k == "content" {
				content = t
			}
			meta[k] = t
		case float64:
			meta[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			meta[k] = strconv.Itoa(t)
		default:
			meta[k] = fmt.Sprintf("%v", t)
		}
	}

	doc := chromem.Document{
		ID:        id,
		Metadata:  meta,
		Embedding: vec,
		Content:   content,
	}
	return s.col.AddDocument(ctx, doc)
}

func (s *ChromemIndex) Query(ctx context.Context, vec []float32, topK int) ([]model.IndexMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem rejects nResults greater than the collection size.
	if n := s.col.Count(); topK > n {
		topK = n
	}
	if topK <= 0 {
		return []model.IndexMatch{}, nil
	}

	results, err := s.col.QueryEmbedding(ctx, vec, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	out := make([]model.IndexMatch, 0, len(results))
	for _, r := range results {
		payload := make(map[string]interface{}, len(r.Metadata))
		for k, v := range r.Metadata {
			if k == "importance" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					payload[k] = f
					continue
				}
			}
			payload[k] = v
		}
		out = append(out, model.IndexMatch{
			ID:      r.ID,
			Score:   float64(r.Similarity),
			Payload: payload,
		})
	}
	return out, nil
}

// HealthPing reports healthy as long as the collection is reachable.
func (s *ChromemIndex) HealthPing(ctx context.Context) error {
	if s == nil || s.col == nil {
		return fmt.Errorf("chromem collection not initialized")
	}
	return nil
}
