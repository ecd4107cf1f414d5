package embeddings

import "context"

// EmbeddingProvider produces fixed-dimension vector representations for text.
// Implementations live in subpackages and are injected at construction time;
// components never branch on the deployment environment themselves.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
