package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/embeddings/mock"
	"github.com/rkwai/rag-system/internal/memories"
	"github.com/rkwai/rag-system/internal/model"
	"github.com/rkwai/rag-system/internal/searchindex/chromem"
	"github.com/rkwai/rag-system/internal/store"
	"github.com/rkwai/rag-system/internal/store/sqlite"
)

type fakeIndex struct {
	matches []model.IndexMatch
	err     error
	calls   int
}

func (f *fakeIndex) Insert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error {
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vec []float32, topK int) ([]model.IndexMatch, error) {
	f.calls++
	return f.matches, f.err
}

type fakeStore struct {
	byPlayer []*model.MemoryRecord
	calls    int
}

func (f *fakeStore) InsertMemory(ctx context.Context, rec *model.MemoryRecord) (*model.MemoryRecord, error) {
	return rec, nil
}

func (f *fakeStore) GetMemory(ctx context.Context, id string) (*model.MemoryRecord, error) {
	return nil, model.ErrNotFound
}

func (f *fakeStore) MemoriesByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MemoryRecord, error) {
	f.calls++
	if limit > 0 && len(f.byPlayer) > limit {
		return f.byPlayer[:limit], nil
	}
	return f.byPlayer, nil
}

type countingEmbedder struct {
	dim   int
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	v := make([]float32, c.dim)
	v[0] = 1
	return v, nil
}

func match(playerID string, score, importance float64, content string) model.IndexMatch {
	return model.IndexMatch{
		ID:    content,
		Score: score,
		Payload: map[string]interface{}{
			"playerId":   playerID,
			"content":    content,
			"importance": importance,
		},
	}
}

func TestRetrieve_TimestampSurvivesIndexPayload(t *testing.T) {
	m := match("p1", 0.9, 0.8, "old scar")
	m.Payload["creationTime"] = "2026-08-29T10:00:00Z"
	idx := &fakeIndex{matches: []model.IndexMatch{m}}
	e := newEngine(idx, &fakeStore{}, &countingEmbedder{dim: 4})

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	want := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if len(out) != 1 || !out[0].Timestamp.Equal(want) {
		t.Fatalf("timestamp should carry through the index payload: %+v", out)
	}
}

func newEngine(idx *fakeIndex, st *fakeStore, emb *countingEmbedder) *Engine {
	ms := memories.New(idx, st, emb.dim, zerolog.Nop())
	return NewEngine(emb, ms, zerolog.Nop())
}

func TestRetrieve_ImportanceBiasesRanking(t *testing.T) {
	idx := &fakeIndex{matches: []model.IndexMatch{
		match("p1", 0.9, 0.2, "trivial"),
		match("p1", 0.9, 0.9, "significant"),
	}}
	e := newEngine(idx, &fakeStore{}, &countingEmbedder{dim: 4})

	out, err := e.Retrieve(context.Background(), "p1", "town", "look around", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out) != 2 || out[0].Content != "significant" {
		t.Fatalf("higher importance should rank first at equal similarity: %+v", out)
	}
}

func TestRetrieve_FiltersOtherPlayers(t *testing.T) {
	idx := &fakeIndex{matches: []model.IndexMatch{
		match("p2", 0.99, 0.9, "someone else"),
		match("p1", 0.5, 0.5, "mine"),
	}}
	e := newEngine(idx, &fakeStore{}, &countingEmbedder{dim: 4})

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out) != 1 || out[0].Content != "mine" {
		t.Fatalf("matches of other players must be dropped: %+v", out)
	}
}

func TestRetrieve_MissingImportanceDefaultsNeutral(t *testing.T) {
	noImp := model.IndexMatch{
		ID:      "a",
		Score:   0.9,
		Payload: map[string]interface{}{"playerId": "p1", "content": "no importance"},
	}
	idx := &fakeIndex{matches: []model.IndexMatch{
		noImp,
		match("p1", 0.9, 0.6, "has importance"),
	}}
	e := newEngine(idx, &fakeStore{}, &countingEmbedder{dim: 4})

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	// 0.9*0.6 > 0.9*0.5: explicit importance outranks the neutral default.
	if out[0].Content != "has importance" || out[1].Importance != 0.5 {
		t.Fatalf("neutral default not applied: %+v %+v", out[0], out[1])
	}
}

func TestRetrieve_ZeroLimitShortCircuits(t *testing.T) {
	emb := &countingEmbedder{dim: 4}
	e := newEngine(&fakeIndex{}, &fakeStore{}, emb)

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 0)
	if err != nil || len(out) != 0 {
		t.Fatalf("limit 0: out=%v err=%v", out, err)
	}
	if emb.calls != 0 {
		t.Fatal("no provider call should be made for limit 0")
	}
}

func TestRetrieve_EmbedFailureFallsBack(t *testing.T) {
	st := &fakeStore{byPlayer: []*model.MemoryRecord{
		{ID: "m1", PlayerID: "p1", Importance: 0.9},
		{ID: "m2", PlayerID: "p1", Importance: 0.4},
	}}
	ms := memories.New(&fakeIndex{}, st, 4, zerolog.Nop())
	e := NewEngine(mock.NewFailing(), ms, zerolog.Nop())

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 5)
	if err != nil {
		t.Fatalf("Retrieve must not surface provider errors: %v", err)
	}
	if len(out) != 2 || out[0].ID != "m1" {
		t.Fatalf("fallback should return the importance-ordered list: %+v", out)
	}
	if st.calls != 1 {
		t.Fatalf("relational fallback not used: calls=%d", st.calls)
	}
}

func TestRetrieve_EmptyIndexFallback(t *testing.T) {
	st := &fakeStore{byPlayer: []*model.MemoryRecord{
		{ID: "m1", PlayerID: "p1", Importance: 0.9},
		{ID: "m2", PlayerID: "p1", Importance: 0.7},
		{ID: "m3", PlayerID: "p1", Importance: 0.2},
	}}
	e := newEngine(&fakeIndex{matches: nil}, st, &countingEmbedder{dim: 4})

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	// Exactly the relational importance-ordered list, truncated to limit.
	if len(out) != 2 || out[0].ID != "m1" || out[1].ID != "m2" {
		t.Fatalf("fallback equivalence violated: %+v", out)
	}
}

func TestRetrieve_IndexErrorFallsBack(t *testing.T) {
	st := &fakeStore{byPlayer: []*model.MemoryRecord{{ID: "m1", PlayerID: "p1", Importance: 0.9}}}
	idx := &fakeIndex{err: errors.New("index down")}
	e := newEngine(idx, st, &countingEmbedder{dim: 4})

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 5)
	if err != nil || len(out) != 1 {
		t.Fatalf("index outage should fall back: out=%v err=%v", out, err)
	}
}

func TestRetrieve_NoMemoriesEitherPath(t *testing.T) {
	e := newEngine(&fakeIndex{}, &fakeStore{}, &countingEmbedder{dim: 4})

	out, err := e.Retrieve(context.Background(), "p1", "town", "look", 5)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("player without memories should get an empty list: %+v", out)
	}
}

func TestRetrieve_DimensionMismatchIsHardError(t *testing.T) {
	// Store configured for dim 4, embedder produces dim 2.
	ms := memories.New(&fakeIndex{}, &fakeStore{}, 4, zerolog.Nop())
	e := NewEngine(&countingEmbedder{dim: 2}, ms, zerolog.Nop())

	if _, err := e.Retrieve(context.Background(), "p1", "town", "look", 5); !errors.Is(err, model.ErrDimensionMismatch) {
		t.Fatalf("dimension mismatch must surface, got %v", err)
	}
}

// End-to-end over the embedded index and store: insert real memories, then
// retrieve with a related action and expect the semantically closer, more
// important memory first.
func TestRetrieve_EndToEnd(t *testing.T) {
	const dim = 64
	emb := mock.New(dim)

	idx, err := chromem.New()
	if err != nil {
		t.Fatalf("chromem: %v", err)
	}
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()
	var st store.Store
	if st, err = sqlite.NewWithDB(db); err != nil {
		t.Fatalf("store: %v", err)
	}

	ms := memories.New(idx, st, dim, zerolog.Nop())
	ctx := context.Background()

	seed := []*model.MemoryRecord{
		{PlayerID: "p1", MemoryType: "item", Content: "Found a crystal in the Dark Forest", Location: "Dark Forest", Importance: 0.8},
		{PlayerID: "p1", MemoryType: "event", Content: "Met a merchant on the road", Location: "Forest Road", Importance: 0.5},
	}
	for _, rec := range seed {
		vec, err := emb.Embed(ctx, rec.Location+" "+rec.Content)
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		rec.Embedding = vec
		if _, err := ms.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	e := NewEngine(emb, ms, zerolog.Nop())
	out, err := e.Retrieve(ctx, "p1", "Dark Forest", "look for more crystals", 2)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(out) == 0 || out[0].Content != "Found a crystal in the Dark Forest" {
		t.Fatalf("crystal memory should rank first: %+v", out)
	}
}
