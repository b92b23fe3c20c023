package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/driftaldev/redline/internal/config"
)

// newOllamaHTTPClient creates an HTTP client with generous timeouts; local
// models can take minutes on a large prompt.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}

// NewGeneratorModel creates the generator model for the configured provider.
func NewGeneratorModel(ctx context.Context, cfg *config.AIConfig, logger *slog.Logger) (llms.Model, error) {
	switch cfg.LLMProvider {
	case "gemini":
		logger.Info("using gemini llm provider", "model", cfg.GeneratorModel)
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires REDLINE_AI_GEMINI_API_KEY")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.GeneratorModel),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)

	case "ollama":
		logger.Info("using ollama llm provider", "model", cfg.GeneratorModel, "host", cfg.OllamaHost)
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(cfg.GeneratorModel),
			ollama.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}

// NewEmbedderModel creates the embedding model used by the search index.
func NewEmbedderModel(ctx context.Context, cfg *config.AIConfig, logger *slog.Logger) (llms.Model, error) {
	switch cfg.EmbedderProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires REDLINE_AI_GEMINI_API_KEY")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.EmbedderModel),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)

	case "ollama":
		logger.Info("using ollama embedder", "model", cfg.EmbedderModel, "host", cfg.OllamaHost)
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithModel(cfg.EmbedderModel),
			ollama.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", cfg.EmbedderProvider)
	}
}
