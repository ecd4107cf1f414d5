package factory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/config"
	emb "github.com/rkwai/rag-system/internal/embeddings"
	"github.com/rkwai/rag-system/internal/embeddings/mock"
	"github.com/rkwai/rag-system/internal/embeddings/ollama"
	"github.com/rkwai/rag-system/internal/embeddings/openai"
	"github.com/rkwai/rag-system/internal/model"
)

// NewEmbeddingProvider creates an embedding provider based on config and
// probes it once. A reachable model that returns vectors of the wrong
// length is a deployment misconfiguration and fails construction; an
// unreachable provider is left to the health checkers.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) (emb.EmbeddingProvider, error) {
	var provider emb.EmbeddingProvider
	timeout := time.Duration(cfg.ProviderTimeoutSeconds) * time.Second

	switch cfg.EmbedProvider {
	case "", "ollama":
		provider = ollama.New(cfg.OllamaURL, cfg.EmbedModel, timeout)
	case "openai":
		p, err := openai.New(cfg.OpenAIAPIKey, "", cfg.EmbedModel)
		if err != nil {
			return nil, err
		}
		provider = p
	case "mock":
		provider = mock.New(cfg.EmbedDim)
	default:
		log.Warn().Str("provider", cfg.EmbedProvider).Msg("unknown embedding provider; using ollama")
		provider = ollama.New(cfg.OllamaURL, cfg.EmbedModel, timeout)
	}

	if err := checkEmbedDimension(ctx, provider, cfg, log); err != nil {
		return nil, err
	}
	return provider, nil
}

// checkEmbedDimension embeds one probe string and compares the vector length
// against the configured dimension. The probe doubles as model warmup.
// Provider errors are logged and tolerated here; the startup health gate owns
// availability.
func checkEmbedDimension(ctx context.Context, provider emb.EmbeddingProvider, cfg *config.Config, log zerolog.Logger) error {
	probeCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ProviderTimeoutSeconds)*time.Second)
	defer cancel()

	vec, err := provider.Embed(probeCtx, "startup-dimension-probe")
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).
			Msg("embedding dimension probe failed; deferring to health checks")
		return nil
	}
	if len(vec) != cfg.EmbedDim {
		return errors.Wrapf(model.ErrDimensionMismatch,
			"embedding model %s returns %d-dim vectors, config expects %d",
			cfg.EmbedModel, len(vec), cfg.EmbedDim)
	}
	log.Debug().Str("provider", cfg.EmbedProvider).Str("model", cfg.EmbedModel).
		Int("dim", len(vec)).Msg("embedding provider probe completed")
	return nil
}
