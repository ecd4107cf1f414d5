package writeback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/memories"
	"github.com/rkwai/rag-system/internal/model"
)

type fakeIndex struct{}

func (fakeIndex) Insert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error {
	return nil
}

func (fakeIndex) Query(ctx context.Context, vec []float32, topK int) ([]model.IndexMatch, error) {
	return nil, nil
}

type capturingStore struct {
	inserted []*model.MemoryRecord
}

func (s *capturingStore) InsertMemory(ctx context.Context, rec *model.MemoryRecord) (*model.MemoryRecord, error) {
	s.inserted = append(s.inserted, rec)
	return rec, nil
}

func (s *capturingStore) GetMemory(ctx context.Context, id string) (*model.MemoryRecord, error) {
	return nil, model.ErrNotFound
}

func (s *capturingStore) MemoriesByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MemoryRecord, error) {
	return nil, nil
}

// fakeEmbedder fails for texts containing "cursed" so tests can make a
// single record in a batch fail.
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if strings.Contains(text, "cursed") {
		return nil, errors.New("embed failed")
	}
	return []float32{1, 0, 0, 0}, nil
}

func newWriter(st *capturingStore, emb *fakeEmbedder) *Writer {
	ms := memories.New(fakeIndex{}, st, 4, zerolog.Nop())
	return NewWriter(emb, ms, zerolog.Nop())
}

func TestPersist_OnlyQualifyingEffects(t *testing.T) {
	st := &capturingStore{}
	emb := &fakeEmbedder{}
	w := newWriter(st, emb)

	effs := []model.Effect{
		model.QuestEffect{Action: model.ActionAdd, Name: "crystal_hunt", Description: "Find the source"},
		model.QuestEffect{Action: model.ActionComplete, Name: "old_quest"},
		model.LocationEffect{Action: model.ActionUpdate, Name: "dark_forest"},
		model.ItemEffect{Action: model.ActionAdd, Name: "torch", Quantity: 2},
		model.ItemEffect{Action: model.ActionUse, Name: "potion", Quantity: 1},
		model.StatusEffect{Action: model.ActionAdd, Name: "poisoned"},
		model.AttributeEffect{Action: model.ActionUpdate, Name: "strength", Value: 12},
	}
	w.Persist(context.Background(), "p1", effs, "The hero enters the forest")

	if len(st.inserted) != 3 {
		t.Fatalf("want 3 memories, got %d", len(st.inserted))
	}
	if emb.calls != 3 {
		t.Fatalf("non-qualifying effects must not be embedded: calls=%d", emb.calls)
	}

	byType := map[string]*model.MemoryRecord{}
	for _, rec := range st.inserted {
		byType[rec.MemoryType] = rec
	}
	quest := byType["quest"]
	if quest == nil || quest.Importance != 0.8 || !strings.Contains(quest.Content, "crystal_hunt") {
		t.Fatalf("unexpected quest memory: %+v", quest)
	}
	loc := byType["location"]
	if loc == nil || loc.Importance != 0.7 || loc.Location != "dark_forest" {
		t.Fatalf("unexpected location memory: %+v", loc)
	}
	item := byType["item"]
	if item == nil || item.Importance != 0.6 || !strings.Contains(item.Content, "2x torch") {
		t.Fatalf("unexpected item memory: %+v", item)
	}
	if quest.Metadata["context"] != "The hero enters the forest" {
		t.Fatalf("narrative context not recorded: %+v", quest.Metadata)
	}
}

func TestPersist_OneFailureDoesNotAbortBatch(t *testing.T) {
	st := &capturingStore{}
	w := newWriter(st, &fakeEmbedder{})

	effs := []model.Effect{
		model.ItemEffect{Action: model.ActionAdd, Name: "cursed_blade", Quantity: 1},
		model.ItemEffect{Action: model.ActionAdd, Name: "rope", Quantity: 1},
	}
	w.Persist(context.Background(), "p1", effs, "")

	if len(st.inserted) != 1 || !strings.Contains(st.inserted[0].Content, "rope") {
		t.Fatalf("sibling effect should survive a failed record: %+v", st.inserted)
	}
}

func TestPersist_EmptyBatchIsNoop(t *testing.T) {
	st := &capturingStore{}
	emb := &fakeEmbedder{}
	newWriter(st, emb).Persist(context.Background(), "p1", nil, "ctx")
	if len(st.inserted) != 0 || emb.calls != 0 {
		t.Fatal("empty batch should not touch providers or stores")
	}
}

func TestPersist_ContextTruncatesOnRuneBoundary(t *testing.T) {
	st := &capturingStore{}
	w := newWriter(st, &fakeEmbedder{})

	// A two-byte rune straddles the 200-byte cap.
	narrative := strings.Repeat("a", 199) + "éé"
	effs := []model.Effect{model.QuestEffect{Action: model.ActionAdd, Name: "long_tale"}}
	w.Persist(context.Background(), "p1", effs, narrative)

	if len(st.inserted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(st.inserted))
	}
	got, _ := st.inserted[0].Metadata["context"].(string)
	if !utf8.ValidString(got) {
		t.Fatalf("stored context is not valid UTF-8: %q", got)
	}
	if len(got) != 199 || !strings.HasSuffix(got, "a") {
		t.Fatalf("expected truncation at the rune boundary, got %d bytes: %q", len(got), got)
	}
}
