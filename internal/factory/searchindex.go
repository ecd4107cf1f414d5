package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rkwai/rag-system/internal/config"
	"github.com/rkwai/rag-system/internal/searchindex"
	"github.com/rkwai/rag-system/internal/searchindex/chromem"
)

// NewSearchIndex creates a similarity index implementation based on
// config. The weaviate variant launches async schema bootstrap and
// returns the index immediately for fast startup; the chromem variant
// is embedded and needs no bootstrap.
func NewSearchIndex(ctx context.Context, cfg *config.Config, log zerolog.Logger) (searchindex.Index, error) {
	switch cfg.VectorStore {
	case "chromem":
		return chromem.New()
	case "weaviate":
		if cfg.WeaviateURL == "" {
			return nil, fmt.Errorf("RPG_SERVICE_WEAVIATE_URL is required when VECTOR_STORE=weaviate")
		}
		idx, err := searchindex.NewWeaviateIndex(cfg.WeaviateURL)
		if err != nil {
			return nil, err
		}

		// Async bootstrap with configurable timeout; don't block startup
		go func() {
			bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
			bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
			defer cancel()

			if err := searchindex.BootstrapWeaviate(bootstrapCtx, cfg.WeaviateURL); err != nil {
				log.Warn().Err(err).Str("url", cfg.WeaviateURL).Msg("search index bootstrap failed")
			} else {
				log.Debug().Str("url", cfg.WeaviateURL).Msg("search index bootstrap completed")
			}
		}()

		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported VECTOR_STORE: %s", cfg.VectorStore)
	}
}
