// Package storetest holds a compliance suite run against every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rkwai/rag-system/internal/model"
	"github.com/rkwai/rag-system/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store
// implementation. makeStore should return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	playerID := "p-" + uuid.New().String()

	// Insert a few records with distinct importance.
	recs := []*model.MemoryRecord{
		{PlayerID: playerID, MemoryType: "event", Content: "met a merchant", Location: "Forest Road", Importance: 0.5},
		{PlayerID: playerID, MemoryType: "item", Content: "found a crystal", Location: "Dark Forest", Importance: 0.8,
			Metadata: map[string]interface{}{"item": "crystal"}},
		{PlayerID: playerID, MemoryType: "quest", Content: "accepted the crystal hunt", Location: "Dark Forest", Importance: 0.6},
	}
	for i, r := range recs {
		got, err := s.InsertMemory(ctx, r)
		require.NoError(t, err, "InsertMemory #%d", i)
		require.NotEmpty(t, got.ID, "InsertMemory #%d: id not assigned", i)
		require.False(t, got.Timestamp.IsZero(), "InsertMemory #%d: timestamp not assigned", i)
		recs[i] = got
	}

	// Get round-trips metadata.
	got, err := s.GetMemory(ctx, recs[1].ID)
	require.NoError(t, err)
	require.Equal(t, "found a crystal", got.Content)
	require.Equal(t, "crystal", got.Metadata["item"])

	// Unknown id maps to ErrNotFound.
	_, err = s.GetMemory(ctx, uuid.New().String())
	require.ErrorIs(t, err, model.ErrNotFound)

	// MemoriesByPlayer orders by importance descending.
	lst, err := s.MemoriesByPlayer(ctx, playerID, 0)
	require.NoError(t, err)
	require.Len(t, lst, 3)
	for i := 1; i < len(lst); i++ {
		require.LessOrEqual(t, lst[i].Importance, lst[i-1].Importance, "not importance-ordered")
	}

	// Limit caps the result.
	lst2, err := s.MemoriesByPlayer(ctx, playerID, 2)
	require.NoError(t, err)
	require.Len(t, lst2, 2)

	// A player with no memories yields an empty list, not an error.
	lst3, err := s.MemoriesByPlayer(ctx, "p-"+uuid.New().String(), 5)
	require.NoError(t, err)
	require.Empty(t, lst3)

	// Importance outside [0,1] is rejected by the schema.
	_, err = s.InsertMemory(ctx, &model.MemoryRecord{
		PlayerID: playerID, MemoryType: "event", Content: "x", Importance: 1.5,
	})
	require.Error(t, err, "importance > 1 should be rejected")
}
