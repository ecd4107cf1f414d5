package factory

import (
	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/config"
	"github.com/rkwai/rag-system/internal/narrative"
	"github.com/rkwai/rag-system/internal/narrative/ollama"
	"github.com/rkwai/rag-system/internal/narrative/openai"
)

// NewNarrativeGenerator creates a narrative generator based on config.
func NewNarrativeGenerator(cfg *config.Config, log zerolog.Logger) (narrative.Generator, error) {
	switch cfg.NarrativeProvider {
	case "", "ollama":
		return ollama.New(cfg.OllamaURL, cfg.NarrativeModel)
	case "openai":
		return openai.New(cfg.OpenAIAPIKey, "", cfg.NarrativeModel)
	default:
		log.Warn().Str("provider", cfg.NarrativeProvider).Msg("unknown narrative provider; using ollama")
		return ollama.New(cfg.OllamaURL, cfg.NarrativeModel)
	}
}
