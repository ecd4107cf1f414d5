package store

import (
	"context"

	"github.com/rkwai/rag-system/internal/model"
)

// Store is the relational facet of memory persistence and the durable source
// of truth for the importance-ranked fallback path. Implementations live
// under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	// InsertMemory persists a record and returns it with storage-assigned
	// fields (id, timestamp) filled in.
	InsertMemory(ctx context.Context, rec *model.MemoryRecord) (*model.MemoryRecord, error)

	// GetMemory returns a single record by id, or model.ErrNotFound.
	GetMemory(ctx context.Context, id string) (*model.MemoryRecord, error)

	// MemoriesByPlayer returns a player's records ordered by importance
	// descending, capped at limit. limit <= 0 means no cap.
	MemoriesByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MemoryRecord, error)
}
