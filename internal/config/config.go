package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents different deployment environments.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the game service.
// Environment variables are parsed from the RPG_SERVICE_ prefix,
// e.g. RPG_SERVICE_HTTP_PORT, RPG_SERVICE_POSTGRES_DSN.
type Config struct {
	// Build target selects the deployment shape: local (embedded sqlite +
	// chromem) or cloud (postgres + weaviate). Individual drivers can still
	// be overridden below.
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	HTTPPort int `envconfig:"HTTP_PORT" default:"8787"`

	// Relational store
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"rpg-memories.db"`

	// Similarity index
	VectorStore string `envconfig:"VECTOR_STORE" default:"auto"`
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"weaviate:8080"`

	// Embedding provider
	EmbedProvider string `envconfig:"EMBED_PROVIDER" default:"ollama"`
	EmbedModel    string `envconfig:"EMBED_MODEL" default:"nomic-embed-text"`
	EmbedDim      int    `envconfig:"EMBED_DIM" default:"768"`

	// Narrative provider
	NarrativeProvider string `envconfig:"NARRATIVE_PROVIDER" default:"ollama"`
	NarrativeModel    string `envconfig:"NARRATIVE_MODEL" default:"llama3.2"`

	OllamaURL    string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""`

	// Every external call (embed, generate, index query, store query) runs
	// under this bound; a timeout is treated like a provider error.
	ProviderTimeoutSeconds int `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"10"`

	// Default number of memories supplied to the narrative prompt.
	RetrieveLimit int `envconfig:"RETRIEVE_LIMIT" default:"5"`

	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"15"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and VectorStore
// when left as "auto". Invalid combinations are configuration errors and
// fatal at startup, never at request time.
func (c *Config) ResolveDefaults() error {
	var defaultDB, defaultVec string

	switch c.BuildTarget {
	case "local":
		defaultDB, defaultVec = "sqlite", "chromem"
	case "cloud":
		defaultDB, defaultVec = "postgres", "weaviate"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	if c.VectorStore == "" || c.VectorStore == "auto" {
		c.VectorStore = defaultVec
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	allowedVec := map[string]bool{"weaviate": true, "chromem": true}
	if !allowedVec[c.VectorStore] {
		return fmt.Errorf("unsupported VECTOR_STORE: %s", c.VectorStore)
	}
	if c.EmbedDim <= 0 {
		return fmt.Errorf("EMBED_DIM must be positive, got %d", c.EmbedDim)
	}
	return nil
}

// New creates a Config from RPG_SERVICE_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("RPG_SERVICE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewForTesting returns a config suitable for unit tests: embedded drivers,
// small timeouts, no external URLs required.
func NewForTesting() *Config {
	cfg := &Config{
		BuildTarget:               "local",
		Environment:               EnvTesting,
		HTTPPort:                  8787,
		DBDriver:                  "sqlite",
		SQLitePath:                ":memory:",
		VectorStore:               "chromem",
		EmbedProvider:             "ollama",
		EmbedModel:                "nomic-embed-text",
		EmbedDim:                  4,
		NarrativeProvider:         "ollama",
		NarrativeModel:            "llama3.2",
		OllamaURL:                 "http://localhost:11434",
		ProviderTimeoutSeconds:    2,
		RetrieveLimit:             5,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   1,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing.
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
