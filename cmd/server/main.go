package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sirpickle/index-server/internal/api"
	"github.com/sirpickle/index-server/internal/config"
	"github.com/sirpickle/index-server/internal/embedding"
	"github.com/sirpickle/index-server/internal/llm"
	"github.com/sirpickle/index-server/internal/service"
	"github.com/sirpickle/index-server/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger, err := newLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	st := store.New(db, store.Options{
		EmbeddingDim:    cfg.EmbeddingDim,
		SimilarityFloor: cfg.SimilarityFloor,
	})
	if err := st.Init(context.Background()); err != nil {
		sugar.Fatalw("failed to initialize schema", "error", err)
	}

	embedder := embedding.NewClient(embedding.Options{
		APIKey:     cfg.EmbeddingAPIKey,
		BaseURL:    cfg.EmbeddingBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDim,
		Timeout:    cfg.EmbedTimeout,
	}, sugar)

	generator, err := newGenerator(cfg)
	if err != nil {
		sugar.Fatalw("failed to configure LLM provider", "error", err)
	}
	sugar.Infow("LLM provider ready", "provider", generator.Name())

	svc := service.New(st, embedder, generator, service.Config{
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
		ContextSegments:  cfg.ContextSegments,
		MaxSnippetLength: cfg.MaxSnippetLength,
		EmbedConcurrency: cfg.EmbedConcurrency,
		AssistantName:    cfg.AssistantName,
		ChannelName:      cfg.ChannelName,
		EmbedTimeout:     cfg.EmbedTimeout,
		SearchTimeout:    cfg.SearchTimeout,
		GenerateTimeout:  cfg.GenerateTimeout,
	}, sugar)

	router := api.NewRouter(svc, cfg.ServiceKey, sugar)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow("starting HTTP server", "port", cfg.Port, "env", cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil {
		sugar.Fatalw("HTTP server error", "error", err)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newGenerator(cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel)
	case config.ProviderOpenRouter:
		return llm.NewOpenRouter(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
