package searchindex

import (
	"context"
	"fmt"
	"time"

	weaviate "github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

const memoryClass = "GameMemory"

// BootstrapWeaviate ensures the GameMemory class exists. Vectors are supplied
// by this service, so the class uses no vectorizer module.
func BootstrapWeaviate(ctx context.Context, baseURL string) error {
	cfg := weaviate.Config{Scheme: "http", Host: baseURL}
	cl, err := weaviate.NewClient(cfg)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cls := &models.Class{
		Class:      memoryClass,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "playerId", DataType: []string{"text"}},
			{Name: "memoryType", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "location", DataType: []string{"text"}},
			{Name: "importance", DataType: []string{"number"}},
			{Name: "creationTime", DataType: []string{"date"}},
		},
	}

	ex, err := cl.Schema().ClassGetter().WithClassName(memoryClass).Do(cctx)
	if err == nil && ex != nil {
		return nil
	}
	if err := cl.Schema().ClassCreator().WithClass(cls).Do(cctx); err != nil {
		return fmt.Errorf("create class %s: %w", memoryClass, err)
	}
	return nil
}
