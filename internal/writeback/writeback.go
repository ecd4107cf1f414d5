// Package writeback converts a subset of validated effects into new
// memory records so that future retrieval can see what the narrative
// just changed. Persistence is best-effort: one record failing never
// aborts the rest of the batch, and the caller's narrative response is
// already committed by the time write-back runs.
package writeback

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/embeddings"
	"github.com/rkwai/rag-system/internal/memories"
	"github.com/rkwai/rag-system/internal/model"
)

const (
	defaultTimeout = 10 * time.Second

	// Stored in record metadata to keep writes traceable to their
	// generation cycle without persisting the whole narrative.
	narrativeContextLimit = 200
)

// Writer persists qualifying effects as memories.
type Writer struct {
	embedder embeddings.EmbeddingProvider
	mem      *memories.MemoryStore
	timeout  time.Duration
	log      zerolog.Logger
}

type Option func(*Writer)

// WithTimeout bounds the embed+insert of each individual record.
func WithTimeout(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func NewWriter(embedder embeddings.EmbeddingProvider, mem *memories.MemoryStore, log zerolog.Logger, opts ...Option) *Writer {
	w := &Writer{
		embedder: embedder,
		mem:      mem,
		timeout:  defaultTimeout,
		log:      log.With().Str("component", "writeback").Logger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Persist writes memories for every qualifying effect: started quests,
// location changes and acquired items. Other effect kinds and actions
// are transient game-state noise and generate no memories. Failures are
// logged per record and do not abort the remaining effects.
func (w *Writer) Persist(ctx context.Context, playerID string, effs []model.Effect, narrativeContext string) {
	for _, eff := range effs {
		rec, ok := recordFor(playerID, eff, narrativeContext)
		if !ok {
			continue
		}
		if err := w.persistOne(ctx, rec); err != nil {
			w.log.Warn().Err(err).
				Str("player_id", playerID).
				Str("memory_type", rec.MemoryType).
				Msg("memory write-back failed")
		}
	}
}

func (w *Writer) persistOne(ctx context.Context, rec *model.MemoryRecord) error {
	cctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	vec, err := w.embedder.Embed(cctx, strings.TrimSpace(rec.Location+" "+rec.Content))
	if err != nil {
		return errors.Wrap(err, "embed memory")
	}
	rec.Embedding = vec
	if _, err := w.mem.Insert(cctx, rec); err != nil {
		return errors.Wrap(err, "insert memory")
	}
	return nil
}

// recordFor builds the memory record for one effect, or reports that
// the effect does not generate a memory.
func recordFor(playerID string, eff model.Effect, narrativeContext string) (*model.MemoryRecord, bool) {
	rec := &model.MemoryRecord{
		PlayerID:   playerID,
		MemoryType: string(eff.Kind()),
		Importance: importanceFor(eff.Kind()),
		Metadata:   map[string]interface{}{"source": "writeback", "action": eff.EffectAction()},
	}
	if c := truncate(narrativeContext, narrativeContextLimit); c != "" {
		rec.Metadata["context"] = c
	}

	switch e := eff.(type) {
	case model.QuestEffect:
		if e.Action != model.ActionAdd {
			return nil, false
		}
		rec.Content = "Started quest " + e.Name
		if e.Description != "" {
			rec.Content += ": " + e.Description
		}
	case model.LocationEffect:
		if e.Action != model.ActionUpdate {
			return nil, false
		}
		rec.Content = "Traveled to " + e.Name
		rec.Location = e.Name
	case model.ItemEffect:
		if e.Action != model.ActionAdd {
			return nil, false
		}
		rec.Content = fmt.Sprintf("Acquired %dx %s", e.Quantity, e.Name)
	default:
		return nil, false
	}
	return rec, true
}

func importanceFor(kind model.EffectKind) float64 {
	switch kind {
	case model.EffectQuest:
		return 0.8
	case model.EffectLocation:
		return 0.7
	case model.EffectItem:
		return 0.6
	default:
		return 0.5
	}
}

// truncate caps s at n bytes without splitting a rune.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
