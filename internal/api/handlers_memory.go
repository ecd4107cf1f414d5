package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	respond "github.com/rkwai/rag-system/internal/api/respond"
	"github.com/rkwai/rag-system/internal/api/validate"
	"github.com/rkwai/rag-system/internal/config"
	"github.com/rkwai/rag-system/internal/embeddings"
	"github.com/rkwai/rag-system/internal/memories"
	"github.com/rkwai/rag-system/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// MemoryHandler exposes direct memory ingestion and listing, the second
// birth path of memory records next to narrative write-back.
type MemoryHandler struct {
	mem      *memories.MemoryStore
	embedder embeddings.EmbeddingProvider
	cfg      *config.Config
	log      zerolog.Logger
}

func NewMemoryHandler(mem *memories.MemoryStore, embedder embeddings.EmbeddingProvider, cfg *config.Config, log zerolog.Logger) *MemoryHandler {
	return &MemoryHandler{mem: mem, embedder: embedder, cfg: cfg, log: log}
}

type createMemoryRequest struct {
	MemoryType string                 `json:"type"`
	Content    string                 `json:"content"`
	Location   string                 `json:"location"`
	Importance *float64               `json:"importance,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// CreateMemory POST /api/players/{playerId}/memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]
	if err := validate.PlayerID(playerID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	var req createMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Content(req.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	importance := 0.5
	if req.Importance != nil {
		if err := validate.Importance(*req.Importance); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		importance = *req.Importance
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.cfg.ProviderTimeoutSeconds)*time.Second)
	defer cancel()

	vec, err := h.embedder.Embed(ctx, strings.TrimSpace(req.Location+" "+req.Content))
	if err != nil {
		h.log.Warn().Err(err).Str("player_id", playerID).Msg("embedding failed for direct ingestion")
		respond.WriteBadGateway(w, "embedding provider unavailable")
		return
	}

	rec := &model.MemoryRecord{
		PlayerID:   playerID,
		MemoryType: req.MemoryType,
		Content:    req.Content,
		Location:   req.Location,
		Importance: importance,
		Metadata:   req.Metadata,
		Embedding:  vec,
	}
	out, err := h.mem.Insert(ctx, rec)
	if err != nil {
		h.log.Error().Err(err).Str("player_id", playerID).Msg("memory insert failed")
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListMemories GET /api/players/{playerId}/memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]
	if err := validate.PlayerID(playerID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			respond.WriteBadRequest(w, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	recs, err := h.mem.ByPlayer(r.Context(), playerID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("player_id", playerID).Msg("memory list failed")
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"memories": recs,
		"count":    len(recs),
	})
}
