// Package retrieval ranks a player's past memories against their current
// situation, combining semantic similarity with the game's importance
// weighting, and falls back to importance-only ranking when semantic search
// is unavailable or empty.
package retrieval

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/embeddings"
	"github.com/rkwai/rag-system/internal/memories"
	"github.com/rkwai/rag-system/internal/model"
)

// ScoreFunc combines a similarity score with a memory's importance weight.
type ScoreFunc func(similarity, importance float64) float64

// ProductScore is the default ranking: similarity * importance. The two are
// not guaranteed to share a scale; the product is kept for compatibility
// with established game tuning and is replaceable via WithScorer.
func ProductScore(similarity, importance float64) float64 {
	return similarity * importance
}

// neutralImportance is assumed when a match's payload carries no importance.
const neutralImportance = 0.5

// minCandidates is the floor on index over-fetch, leaving room for
// post-filtering other players' matches out.
const minCandidates = 20

type Engine struct {
	embedder embeddings.EmbeddingProvider
	mem      *memories.MemoryStore
	score    ScoreFunc
	timeout  time.Duration
	log      zerolog.Logger
}

type Option func(*Engine)

// WithScorer replaces the ranking formula.
func WithScorer(f ScoreFunc) Option {
	return func(e *Engine) { e.score = f }
}

// WithTimeout bounds each external call made during retrieval.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

func NewEngine(embedder embeddings.EmbeddingProvider, mem *memories.MemoryStore, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		embedder: embedder,
		mem:      mem,
		score:    ProductScore,
		timeout:  10 * time.Second,
		log:      log,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Retrieve returns up to limit memories relevant to the player's current
// location and action, best first.
//
// The semantic path embeds "location action", over-fetches neighbours,
// drops other players' matches, and ranks by score(similarity, importance).
// Provider outages and empty semantic results degrade to the relational
// importance-ordered list; they never surface as errors. A query-vector
// dimension mismatch does surface: it means the deployment is misconfigured.
func (e *Engine) Retrieve(ctx context.Context, playerID, location, action string, limit int) ([]*model.MemoryRecord, error) {
	if limit <= 0 {
		return []*model.MemoryRecord{}, nil
	}

	query := strings.TrimSpace(location + " " + action)

	vec, err := e.embed(ctx, query)
	if err != nil {
		e.log.Warn().Err(err).Str("playerId", playerID).Str("query", query).
			Msg("embedding failed, using importance fallback")
		return e.fallback(ctx, playerID, limit)
	}

	topK := limit * 3
	if topK < minCandidates {
		topK = minCandidates
	}

	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	matches, err := e.mem.Query(qctx, vec, topK)
	if err != nil {
		if errors.Is(err, model.ErrDimensionMismatch) {
			return nil, err
		}
		e.log.Warn().Err(err).Str("playerId", playerID).
			Msg("similarity query failed, using importance fallback")
		return e.fallback(ctx, playerID, limit)
	}

	ranked := e.rank(playerID, matches, limit)
	if len(ranked) == 0 {
		return e.fallback(ctx, playerID, limit)
	}
	return ranked, nil
}

func (e *Engine) embed(ctx context.Context, query string) ([]float32, error) {
	ectx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.embedder.Embed(ectx, query)
}

type scoredMatch struct {
	rec   *model.MemoryRecord
	score float64
}

// rank filters matches to the requesting player, combines similarity with
// importance, and returns the top limit records.
func (e *Engine) rank(playerID string, matches []model.IndexMatch, limit int) []*model.MemoryRecord {
	scored := make([]scoredMatch, 0, len(matches))
	for _, m := range matches {
		if payloadString(m.Payload, "playerId") != playerID {
			continue
		}
		importance := neutralImportance
		if v, ok := m.Payload["importance"].(float64); ok {
			importance = v
		}
		scored = append(scored, scoredMatch{
			rec:   recordFromMatch(m, importance),
			score: e.score(m.Score, importance),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]*model.MemoryRecord, len(scored))
	for i, s := range scored {
		out[i] = s.rec
	}
	return out
}

func (e *Engine) fallback(ctx context.Context, playerID string, limit int) ([]*model.MemoryRecord, error) {
	fctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	recs, err := e.mem.ByPlayer(fctx, playerID, limit)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*model.MemoryRecord{}
	}
	return recs, nil
}

func recordFromMatch(m model.IndexMatch, importance float64) *model.MemoryRecord {
	rec := &model.MemoryRecord{
		ID:         m.ID,
		PlayerID:   payloadString(m.Payload, "playerId"),
		MemoryType: payloadString(m.Payload, "memoryType"),
		Content:    payloadString(m.Payload, "content"),
		Location:   payloadString(m.Payload, "location"),
		Importance: importance,
	}
	if ts, err := time.Parse(time.RFC3339, payloadString(m.Payload, "creationTime")); err == nil {
		rec.Timestamp = ts
	}
	return rec
}

func payloadString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
