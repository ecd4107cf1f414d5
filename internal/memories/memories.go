// Package memories is the dual-facet Memory Store: a similarity index for
// semantic recall and a relational table as the durable source of truth.
package memories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/model"
	"github.com/rkwai/rag-system/internal/searchindex"
	"github.com/rkwai/rag-system/internal/store"
)

// MemoryStore performs two physical writes per insert: similarity index
// first, relational table second, no transaction across the two. An
// index-only orphan is tolerated (it can't break the fallback path); a
// relational-only row would break semantic recall, which is why the index
// write goes first and a failure there aborts the insert.
type MemoryStore struct {
	index searchindex.Index
	store store.Store
	dim   int
	log   zerolog.Logger
}

func New(idx searchindex.Index, st store.Store, embedDim int, log zerolog.Logger) *MemoryStore {
	return &MemoryStore{index: idx, store: st, dim: embedDim, log: log}
}

// Insert validates and persists a record to both facets. The record's
// embedding must match the configured dimension.
func (m *MemoryStore) Insert(ctx context.Context, rec *model.MemoryRecord) (*model.MemoryRecord, error) {
	if rec.PlayerID == "" {
		return nil, fmt.Errorf("%w: playerId is required", model.ErrValidation)
	}
	if rec.Importance < 0 || rec.Importance > 1 {
		return nil, fmt.Errorf("%w: importance %v outside [0,1]", model.ErrValidation, rec.Importance)
	}
	if m.dim > 0 && len(rec.Embedding) != m.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", model.ErrDimensionMismatch, len(rec.Embedding), m.dim)
	}

	out := *rec
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now().UTC()
	}

	payload := map[string]interface{}{
		"playerId":     out.PlayerID,
		"memoryType":   out.MemoryType,
		"content":      out.Content,
		"location":     out.Location,
		"importance":   out.Importance,
		"creationTime": out.Timestamp.Format(time.RFC3339),
	}
	if err := m.index.Insert(ctx, out.ID, out.Embedding, payload); err != nil {
		return nil, fmt.Errorf("index insert: %w", err)
	}

	stored, err := m.store.InsertMemory(ctx, &out)
	if err != nil {
		// The index now holds an entry the relational table doesn't. Semantic
		// recall still works; surface the id so the orphan can be traced.
		m.log.Error().Err(err).Str("memoryId", out.ID).Str("playerId", out.PlayerID).
			Msg("relational insert failed after index write")
		return nil, fmt.Errorf("store insert: %w", err)
	}
	return stored, nil
}

// Query runs a nearest-neighbour search. The query vector must match the
// configured dimension; a mismatch is a misconfiguration, not a transient
// provider failure.
func (m *MemoryStore) Query(ctx context.Context, vec []float32, topK int) ([]model.IndexMatch, error) {
	if m.dim > 0 && len(vec) != m.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", model.ErrDimensionMismatch, len(vec), m.dim)
	}
	return m.index.Query(ctx, vec, topK)
}

// ByPlayer returns the player's records from the relational facet, ordered
// by importance descending.
func (m *MemoryStore) ByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MemoryRecord, error) {
	return m.store.MemoriesByPlayer(ctx, playerID, limit)
}

// Get returns a single record from the relational facet.
func (m *MemoryStore) Get(ctx context.Context, id string) (*model.MemoryRecord, error) {
	return m.store.GetMemory(ctx, id)
}
