package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	respond "github.com/rkwai/rag-system/internal/api/respond"
	"github.com/rkwai/rag-system/internal/api/validate"
	"github.com/rkwai/rag-system/internal/config"
	"github.com/rkwai/rag-system/internal/effects"
	"github.com/rkwai/rag-system/internal/model"
	"github.com/rkwai/rag-system/internal/narrative"
	"github.com/rkwai/rag-system/internal/retrieval"
	"github.com/rkwai/rag-system/internal/writeback"
)

// ActionHandler runs one player action end to end: retrieve memories,
// generate narrative, extract effects, write qualifying effects back
// as new memories.
type ActionHandler struct {
	engine   *retrieval.Engine
	gen      narrative.Generator
	pipeline *effects.Pipeline
	writer   *writeback.Writer
	cfg      *config.Config
	log      zerolog.Logger
}

func NewActionHandler(engine *retrieval.Engine, gen narrative.Generator, pipeline *effects.Pipeline, writer *writeback.Writer, cfg *config.Config, log zerolog.Logger) *ActionHandler {
	return &ActionHandler{engine: engine, gen: gen, pipeline: pipeline, writer: writer, cfg: cfg, log: log}
}

type actionRequest struct {
	Action   string `json:"action"`
	Location string `json:"location"`
}

type actionResponse struct {
	Narrative    string                   `json:"narrative"`
	Effects      []map[string]interface{} `json:"effects"`
	MemoriesUsed []*model.MemoryRecord    `json:"memoriesUsed"`
}

// HandleAction POST /api/players/{playerId}/actions
func (h *ActionHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]
	if err := validate.PlayerID(playerID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Action(req.Action); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	mems, err := h.engine.Retrieve(ctx, playerID, req.Location, req.Action, h.cfg.RetrieveLimit)
	if err != nil {
		// Provider outages already degraded to the fallback inside the
		// engine; what surfaces here is a dimension misconfiguration or
		// a relational store failure on the fallback path.
		h.log.Error().Err(err).Str("player_id", playerID).Msg("memory retrieval failed")
		if errors.Is(err, model.ErrDimensionMismatch) {
			respond.WriteInternalError(w, "memory retrieval misconfigured")
			return
		}
		respond.WriteInternalError(w, "memory retrieval failed")
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, time.Duration(h.cfg.ProviderTimeoutSeconds)*time.Second)
	defer cancel()
	text, err := h.gen.Generate(genCtx, buildPrompt(req.Location, req.Action, mems))
	if err != nil {
		h.log.Warn().Err(err).Str("player_id", playerID).Msg("narrative generation failed")
		respond.WriteBadGateway(w, "narrative generation unavailable")
		return
	}

	effs := h.pipeline.Extract(text)
	h.writer.Persist(ctx, playerID, effs, text)

	respond.WriteJSON(w, http.StatusOK, actionResponse{
		Narrative:    text,
		Effects:      encodeEffects(effs),
		MemoriesUsed: mems,
	})
}

func buildPrompt(location, action string, mems []*model.MemoryRecord) string {
	var b strings.Builder
	b.WriteString("You are the narrator of a fantasy role-playing game.\n")
	if len(mems) > 0 {
		b.WriteString("The player remembers:\n")
		for _, m := range mems {
			if m.Location != "" {
				fmt.Fprintf(&b, "- %s (at %s)\n", m.Content, m.Location)
			} else {
				fmt.Fprintf(&b, "- %s\n", m.Content)
			}
		}
	}
	if location != "" {
		fmt.Fprintf(&b, "The player is at %s.\n", location)
	}
	fmt.Fprintf(&b, "The player does: %s\n", action)
	b.WriteString("Narrate the outcome in a few sentences, then output a JSON array of game effects.")
	return b.String()
}

// encodeEffects renders effects in the wire shape the extraction
// pipeline consumes, so clients see the same vocabulary they feed the
// generator prompt with.
func encodeEffects(effs []model.Effect) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(effs))
	for _, eff := range effs {
		var data map[string]interface{}
		switch e := eff.(type) {
		case model.ItemEffect:
			data = map[string]interface{}{"name": e.Name, "quantity": e.Quantity, "properties": e.Properties}
		case model.LocationEffect:
			data = map[string]interface{}{"name": e.Name}
		case model.QuestEffect:
			data = map[string]interface{}{"name": e.Name}
			if e.Description != "" {
				data["description"] = e.Description
			}
			if e.Difficulty != "" {
				data["difficulty"] = e.Difficulty
			}
		case model.StatusEffect:
			data = map[string]interface{}{"name": e.Name}
			if e.Duration != 0 {
				data["duration"] = e.Duration
			}
		case model.AttributeEffect:
			data = map[string]interface{}{"name": e.Name, "value": e.Value}
		default:
			continue
		}
		out = append(out, map[string]interface{}{
			"type":   string(eff.Kind()),
			"action": eff.EffectAction(),
			"data":   data,
		})
	}
	return out
}
