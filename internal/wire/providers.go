// Package wire assembles the application dependency graph.
package wire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/parsers"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/llm"
	"github.com/driftaldev/redline/internal/logger"
	"github.com/driftaldev/redline/internal/storage"
)

func provideLogger(cfg *config.Config) *slog.Logger {
	return logger.NewLogger(cfg.Logging, nil)
}

func provideAIConfig(cfg *config.Config) *config.AIConfig {
	return &cfg.AI
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideMaxWorkers(cfg *config.Config) int {
	return cfg.Server.MaxWorkers
}

// provideEmbedder builds the embedding model and wraps it in goframe's
// embedder service. The embedding model is deliberately not exposed to the
// rest of the graph; only the generator model is.
func provideEmbedder(ctx context.Context, cfg *config.AIConfig, logger *slog.Logger) (embeddings.Embedder, error) {
	embedderModel, err := llm.NewEmbedderModel(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder model: %w", err)
	}
	embedderClient, ok := embedderModel.(embeddings.Embedder)
	if !ok {
		return nil, fmt.Errorf("embedder model %T does not implement embeddings.Embedder", embedderModel)
	}
	return embeddings.NewEmbedder(embedderClient)
}

func provideVectorStore(cfg *config.Config, embedder embeddings.Embedder, logger *slog.Logger) storage.VectorStore {
	return storage.NewQdrantVectorStore(cfg.AI.QdrantHost, embedder, logger)
}

func provideParserRegistry(logger *slog.Logger) (parsers.ParserRegistry, error) {
	return parsers.RegisterLanguagePlugins(logger)
}
