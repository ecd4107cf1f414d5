package searchindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	gql "github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/rkwai/rag-system/internal/model"
)

// weavNative implements Index using the Weaviate Go client.
type weavNative struct {
	client  *weaviate.Client
	baseURL string // host:port without scheme
}

// NewWeaviateIndex constructs an Index backed by Weaviate at baseURL.
// baseURL should be host:port (without scheme), e.g. "localhost:8081".
func NewWeaviateIndex(baseURL string) (Index, error) {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &weavNative{client: cl, baseURL: baseURL}, nil
}

func (w *weavNative) Insert(ctx context.Context, id string, vec []float32, payload map[string]interface{}) error {
	_, err := w.client.Data().Creator().
		WithClassName(memoryClass).
		WithID(id).
		WithProperties(payload).
		WithVector(vec).
		Do(ctx)
	return err
}

func (w *weavNative) Query(ctx context.Context, vec []float32, topK int) ([]model.IndexMatch, error) {
	nv := (&gql.NearVectorArgumentBuilder{}).WithVector(vec)

	req := w.client.GraphQL().Get().
		WithClassName(memoryClass).
		WithNearVector(nv).
		WithLimit(topK).
		WithFields(
			gql.Field{Name: "playerId"},
			gql.Field{Name: "memoryType"},
			gql.Field{Name: "content"},
			gql.Field{Name: "location"},
			gql.Field{Name: "importance"},
			gql.Field{Name: "creationTime"},
			gql.Field{Name: "_additional", Fields: []gql.Field{{Name: "id"}, {Name: "certainty"}}},
		)

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql: %s", formatGraphQLErrors(resp.Errors))
	}

	getData, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	raw, ok := getData[memoryClass].([]interface{})
	if !ok || raw == nil {
		return []model.IndexMatch{}, nil
	}

	out := make([]model.IndexMatch, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		match := model.IndexMatch{Payload: map[string]interface{}{}}
		for _, key := range []string{"playerId", "memoryType", "content", "location", "importance", "creationTime"} {
			if v, ok := m[key]; ok {
				match.Payload[key] = v
			}
		}
		if add, ok := m["_additional"].(map[string]interface{}); ok {
			match.ID, _ = add["id"].(string)
			switch v := add["certainty"].(type) {
			case float64:
				match.Score = v
			case string:
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					match.Score = f
				}
			}
		}
		out = append(out, match)
	}
	return out, nil
}

// HealthPing calls GET http://<baseURL>/v1/meta and expects 200 OK.
func (w *weavNative) HealthPing(ctx context.Context) error {
	if w == nil || w.baseURL == "" {
		return fmt.Errorf("weaviate baseURL missing")
	}
	url := w.baseURL
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/meta", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weaviate status %d", resp.StatusCode)
	}
	return nil
}

// formatGraphQLErrors returns a compact string with messages for logging.
func formatGraphQLErrors(errs interface{}) string {
	if b, err := json.Marshal(errs); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", errs)
}
