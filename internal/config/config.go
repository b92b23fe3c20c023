// Package config loads and validates the application configuration from
// environment variables and an optional config file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/logger"
)

// Config holds the application's configuration values, grouped by concern.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Logging  logger.Config `mapstructure:"logging"`
	Database DBConfig      `mapstructure:"database"`
	AI       AIConfig      `mapstructure:"ai"`
	GitHub   GitHubConfig  `mapstructure:"github"`
	Review   ReviewConfig  `mapstructure:"review"`
}

// ServerConfig configures the webhook server and its job queue.
type ServerConfig struct {
	Port       string `mapstructure:"port"`
	MaxWorkers int    `mapstructure:"max_workers"`

	// RepoPath is the directory remote repositories are cloned into.
	RepoPath string `mapstructure:"repo_path"`
}

// DBConfig configures the Postgres connection used for run history.
type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// AIConfig configures the LLM and embedding providers.
type AIConfig struct {
	LLMProvider      string `mapstructure:"llm_provider"`
	EmbedderProvider string `mapstructure:"embedder_provider"`
	GeneratorModel   string `mapstructure:"generator_model"`
	EmbedderModel    string `mapstructure:"embedder_model"`
	OllamaHost       string `mapstructure:"ollama_host"`
	QdrantHost       string `mapstructure:"qdrant_host"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// GitHubConfig configures how the tool talks to GitHub. Token auth serves the
// CLI; App auth serves the webhook server.
type GitHubConfig struct {
	Token          string `mapstructure:"token"`
	AppID          int64  `mapstructure:"app_id"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
}

// ReviewConfig tunes the analysis pipeline.
type ReviewConfig struct {
	Roles         []string      `mapstructure:"roles"`
	ToolBudget    int           `mapstructure:"tool_budget"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	MaxDepth      int           `mapstructure:"max_depth"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	MinSeverity   string        `mapstructure:"min_severity"`
}

// LoadConfig reads configuration from environment variables (prefix REDLINE)
// and an optional config.yml, applies defaults, and validates the result.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_workers", 5)
	v.SetDefault("server.repo_path", "data/repos")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "redline")
	v.SetDefault("database.database", "redline")
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("ai.llm_provider", "ollama")
	v.SetDefault("ai.embedder_provider", "ollama")
	v.SetDefault("ai.generator_model", "qwen2.5-coder:14b")
	v.SetDefault("ai.embedder_model", "nomic-embed-text")
	v.SetDefault("ai.ollama_host", "http://localhost:11434")
	v.SetDefault("ai.qdrant_host", "localhost:6334")
	v.SetDefault("ai.request_timeout", 3*time.Minute)

	v.SetDefault("github.private_key_path", "keys/redline-app.private-key.pem")

	v.SetDefault("review.roles", []string{"security", "performance", "logic"})
	v.SetDefault("review.tool_budget", 5)
	v.SetDefault("review.cache_ttl", 30*time.Minute)
	v.SetDefault("review.max_depth", 2)
	v.SetDefault("review.min_confidence", 0.5)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.redline")

	v.SetEnvPrefix("REDLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Gemini needs a different default generator model than ollama.
	if cfg.AI.LLMProvider == "gemini" && !v.IsSet("ai.generator_model") {
		cfg.AI.GeneratorModel = "gemini-2.5-flash"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the sections that have invariants worth failing fast on.
func (c *Config) Validate() error {
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("ai config: %w", err)
	}
	if err := c.Review.Validate(); err != nil {
		return fmt.Errorf("review config: %w", err)
	}
	return nil
}

// Validate checks provider names and the API key pairing.
func (c *AIConfig) Validate() error {
	switch c.LLMProvider {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLMProvider)
	}
	switch c.EmbedderProvider {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("unsupported embedder provider: %q", c.EmbedderProvider)
	}
	if c.LLMProvider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("gemini provider requires an api key")
	}
	return nil
}

// Validate checks role names, budgets, thresholds and traversal depth.
func (c *ReviewConfig) Validate() error {
	seen := make(map[string]bool, len(c.Roles))
	for _, raw := range c.Roles {
		role, ok := core.ParseRole(raw)
		if !ok {
			return fmt.Errorf("unknown analysis role: %q", raw)
		}
		if seen[string(role)] {
			return fmt.Errorf("duplicate analysis role: %q", raw)
		}
		seen[string(role)] = true
	}
	if c.ToolBudget < 1 || c.ToolBudget > 100 {
		return fmt.Errorf("tool_budget must be between 1 and 100, got %d", c.ToolBudget)
	}
	if c.MaxDepth < 1 || c.MaxDepth > 10 {
		return fmt.Errorf("max_depth must be between 1 and 10, got %d", c.MaxDepth)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be within [0,1], got %v", c.MinConfidence)
	}
	if c.MinSeverity != "" {
		if _, ok := core.ParseSeverity(c.MinSeverity); !ok {
			return fmt.Errorf("unknown min_severity: %q", c.MinSeverity)
		}
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %v", c.CacheTTL)
	}
	return nil
}

// ParsedRoles resolves the configured role list to typed roles, in config order.
func (c *ReviewConfig) ParsedRoles() []core.Role {
	if len(c.Roles) == 0 {
		return core.AllRoles
	}
	roles := make([]core.Role, 0, len(c.Roles))
	for _, raw := range c.Roles {
		if role, ok := core.ParseRole(raw); ok {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return core.AllRoles
	}
	return roles
}

// RepoConfigPath returns the location of a repository's own review config.
func RepoConfigPath(repoPath string) string {
	return filepath.Join(repoPath, repoConfigFileName)
}
