package config

import (
	"os"
	"testing"
)

func TestConfigLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("RPG_SERVICE_BUILD_TARGET")
	_ = os.Unsetenv("RPG_SERVICE_EMBED_PROVIDER")
	_ = os.Unsetenv("RPG_SERVICE_EMBED_MODEL")
	_ = os.Unsetenv("RPG_SERVICE_EMBED_DIM")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.EmbedProvider != "ollama" || cfg.EmbedModel != "nomic-embed-text" || cfg.EmbedDim != 768 {
		t.Fatalf("unexpected default embed config: %+v", cfg)
	}
	if cfg.DBDriver != "sqlite" || cfg.VectorStore != "chromem" {
		t.Fatalf("local build target should derive embedded drivers: %+v", cfg)
	}
}

func TestConfigLoad_CloudTargetDerivesDrivers(t *testing.T) {
	_ = os.Setenv("RPG_SERVICE_BUILD_TARGET", "cloud")
	defer func() { _ = os.Unsetenv("RPG_SERVICE_BUILD_TARGET") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" || cfg.VectorStore != "weaviate" {
		t.Fatalf("cloud build target should derive postgres+weaviate: %+v", cfg)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("RPG_SERVICE_EMBED_MODEL", "test-model")
	defer func() { _ = os.Unsetenv("RPG_SERVICE_EMBED_MODEL") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.EmbedModel != "test-model" {
		t.Fatalf("embed model env override failed, got %s", cfg.EmbedModel)
	}
}

func TestResolveDefaults_RejectsUnknownTarget(t *testing.T) {
	cfg := &Config{BuildTarget: "mainframe"}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatal("expected error for unknown build target")
	}
}

func TestResolveDefaults_RejectsBadDimension(t *testing.T) {
	cfg := &Config{BuildTarget: "local", EmbedDim: 0}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatal("expected error for non-positive embed dimension")
	}
}

func TestResolveDefaults_KeepsExplicitDriver(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "postgres", EmbedDim: 768}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("explicit DB driver overridden: %s", cfg.DBDriver)
	}
	if cfg.VectorStore != "chromem" {
		t.Fatalf("auto vector store not derived: %s", cfg.VectorStore)
	}
}
