package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReviewConfig_Validate(t *testing.T) {
	valid := ReviewConfig{
		Roles:         []string{"security", "logic"},
		ToolBudget:    5,
		CacheTTL:      30 * time.Minute,
		MaxDepth:      2,
		MinConfidence: 0.5,
	}

	tests := []struct {
		name    string
		mutate  func(c *ReviewConfig)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(_ *ReviewConfig) {},
			wantErr: false,
		},
		{
			name:    "unknown role",
			mutate:  func(c *ReviewConfig) { c.Roles = []string{"security", "styyle"} },
			wantErr: true,
		},
		{
			name:    "duplicate role",
			mutate:  func(c *ReviewConfig) { c.Roles = []string{"logic", "logic"} },
			wantErr: true,
		},
		{
			name:    "zero tool budget",
			mutate:  func(c *ReviewConfig) { c.ToolBudget = 0 },
			wantErr: true,
		},
		{
			name:    "excessive tool budget",
			mutate:  func(c *ReviewConfig) { c.ToolBudget = 500 },
			wantErr: true,
		},
		{
			name:    "max depth out of range",
			mutate:  func(c *ReviewConfig) { c.MaxDepth = 11 },
			wantErr: true,
		},
		{
			name:    "confidence above one",
			mutate:  func(c *ReviewConfig) { c.MinConfidence = 1.5 },
			wantErr: true,
		},
		{
			name:    "unknown min severity",
			mutate:  func(c *ReviewConfig) { c.MinSeverity = "catastrophic" },
			wantErr: true,
		},
		{
			name:    "known min severity",
			mutate:  func(c *ReviewConfig) { c.MinSeverity = "high" },
			wantErr: false,
		},
		{
			name:    "non-positive cache ttl",
			mutate:  func(c *ReviewConfig) { c.CacheTTL = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.Roles = append([]string(nil), valid.Roles...)
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("ReviewConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  AIConfig
		wantErr bool
	}{
		{
			name:    "ollama without key",
			config:  AIConfig{LLMProvider: "ollama", EmbedderProvider: "ollama"},
			wantErr: false,
		},
		{
			name:    "gemini without key",
			config:  AIConfig{LLMProvider: "gemini", EmbedderProvider: "ollama"},
			wantErr: true,
		},
		{
			name:    "gemini with key",
			config:  AIConfig{LLMProvider: "gemini", EmbedderProvider: "gemini", GeminiAPIKey: "k"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			config:  AIConfig{LLMProvider: "openai", EmbedderProvider: "ollama"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("AIConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRepoConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadRepoConfig(dir)
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got %v", err)
		}
		if cfg == nil || len(cfg.Roles) != 0 {
			t.Errorf("expected default repo config, got %+v", cfg)
		}
	})

	t.Run("valid file overrides defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := "roles:\n  - security\nmin_severity: high\ntool_budget: 3\nexclude_dirs:\n  - dist\n"
		if err := os.WriteFile(filepath.Join(dir, repoConfigFileName), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadRepoConfig(dir)
		if err != nil {
			t.Fatalf("LoadRepoConfig() error = %v", err)
		}
		if len(cfg.Roles) != 1 || cfg.Roles[0] != "security" {
			t.Errorf("roles not applied: %+v", cfg.Roles)
		}
		if cfg.MinSeverity != "high" || cfg.ToolBudget != 3 {
			t.Errorf("overrides not applied: %+v", cfg)
		}
	})

	t.Run("path traversal in exclude_dirs rejected", func(t *testing.T) {
		dir := t.TempDir()
		content := "exclude_dirs:\n  - ../outside\n"
		if err := os.WriteFile(filepath.Join(dir, repoConfigFileName), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRepoConfig(dir); !errors.Is(err, ErrConfigParsing) {
			t.Fatalf("expected ErrConfigParsing, got %v", err)
		}
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, repoConfigFileName), []byte("roles: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRepoConfig(dir); !errors.Is(err, ErrConfigParsing) {
			t.Fatalf("expected ErrConfigParsing, got %v", err)
		}
	})
}
