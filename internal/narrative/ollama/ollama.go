// Package ollama provides a narrative Generator backed by a local Ollama
// instance via its Go API client.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

type Generator struct {
	client *api.Client
	model  string
}

// New creates a Generator. An empty baseURL falls back to localhost.
func New(baseURL, model string) (*Generator, error) {
	if model == "" {
		model = "llama3.2"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	uri, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	return &Generator{
		client: api.NewClient(uri, http.DefaultClient),
		model:  model,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: new(bool), // false
	}

	var sb strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return sb.String(), nil
}
