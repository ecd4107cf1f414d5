package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/api/recovery"
	"github.com/rkwai/rag-system/internal/config"
	"github.com/rkwai/rag-system/internal/effects"
	"github.com/rkwai/rag-system/internal/embeddings"
	"github.com/rkwai/rag-system/internal/memories"
	"github.com/rkwai/rag-system/internal/narrative"
	"github.com/rkwai/rag-system/internal/retrieval"
	"github.com/rkwai/rag-system/internal/writeback"
)

// Deps carries the constructed core components into the HTTP layer.
type Deps struct {
	Engine    *retrieval.Engine
	Generator narrative.Generator
	Pipeline  *effects.Pipeline
	Writer    *writeback.Writer
	Memories  *memories.MemoryStore
	Embedder  embeddings.EmbeddingProvider
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, deps Deps, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	actionHandler := NewActionHandler(deps.Engine, deps.Generator, deps.Pipeline, deps.Writer, cfg, log)
	memoryHandler := NewMemoryHandler(deps.Memories, deps.Embedder, cfg, log)

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	router.HandleFunc("/api/players/{playerId}/actions", actionHandler.HandleAction).Methods("POST")
	router.HandleFunc("/api/players/{playerId}/memories", memoryHandler.CreateMemory).Methods("POST")
	router.HandleFunc("/api/players/{playerId}/memories", memoryHandler.ListMemories).Methods("GET")

	return router
}
