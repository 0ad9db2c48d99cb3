package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Provider names accepted for LLM_PROVIDER.
const (
	ProviderOpenRouter = "OPENROUTER"
	ProviderOllama     = "OLLAMA"
)

type Config struct {
	Port        string
	AppEnv      string
	DatabaseURL string
	ServiceKey  string // X-API-Key guarding admin routes

	// Embeddings
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingDim     int

	// Generative model
	LLMProvider       string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	OllamaHost        string
	OllamaModel       string

	// Retrieval
	ChunkSize          int
	ChunkOverlap       int
	ContextSegments    int // top-K chunks sent to the model
	MaxSnippetLength   int // related-source snippet cap
	SimilarityFloor    float64
	EmbedConcurrency   int
	AssistantName      string
	ChannelName        string

	// Per-stage timeouts
	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	GenerateTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults for
// everything except the database URL.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ServiceKey:  os.Getenv("SERVICE_API_KEY"),

		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingBaseURL: os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIM", 1536),

		LLMProvider:       getEnv("LLM_PROVIDER", ProviderOpenRouter),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "nousresearch/deephermes-3-mistral-24b-preview:free"),
		OllamaHost:        os.Getenv("OLLAMA_HOST"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3.1"),

		ChunkSize:        getEnvInt("CHUNK_SIZE", 1500),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		ContextSegments:  getEnvInt("MAX_CONTEXT_SEGMENTS", 5),
		MaxSnippetLength: getEnvInt("MAX_SNIPPET_LENGTH", 1024),
		SimilarityFloor:  getEnvFloat("SIMILARITY_FLOOR", 0),
		EmbedConcurrency: getEnvInt("EMBED_CONCURRENCY", 3),
		AssistantName:    getEnv("ASSISTANT_NAME", "Sir Pickle AI"),
		ChannelName:      getEnv("CHANNEL_NAME", "Sir Pickle"),

		EmbedTimeout:    getEnvDuration("EMBED_TIMEOUT", 30*time.Second),
		SearchTimeout:   getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
		GenerateTimeout: getEnvDuration("GENERATE_TIMEOUT", 90*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.LLMProvider != ProviderOpenRouter && cfg.LLMProvider != ProviderOllama {
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
