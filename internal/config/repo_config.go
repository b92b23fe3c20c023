package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/driftaldev/redline/internal/core"
)

const repoConfigFileName = ".redline.yml"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParsing  = errors.New("config parsing failed")
)

// LoadRepoConfig loads and parses the .redline.yml file from a repository
// path. A missing file is not an error worth failing a review over; the
// defaults are returned together with ErrConfigNotFound so callers can log it.
func LoadRepoConfig(repoPath string) (*core.RepoConfig, error) {
	configPath := filepath.Join(repoPath, repoConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return core.DefaultRepoConfig(), ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", repoConfigFileName, err)
	}

	cfg := core.DefaultRepoConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	if err := validateRepoConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	return cfg, nil
}

// validateRepoConfig rejects values a repository cannot be allowed to set,
// since .redline.yml content is author-controlled.
func validateRepoConfig(cfg *core.RepoConfig) error {
	for _, raw := range cfg.Roles {
		if _, ok := core.ParseRole(raw); !ok {
			return fmt.Errorf("unknown analysis role: %q", raw)
		}
	}
	if cfg.MinSeverity != "" {
		if _, ok := core.ParseSeverity(cfg.MinSeverity); !ok {
			return fmt.Errorf("unknown min_severity: %q", cfg.MinSeverity)
		}
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be within [0,1], got %v", cfg.MinConfidence)
	}
	if cfg.ToolBudget < 0 || cfg.ToolBudget > 100 {
		return fmt.Errorf("tool_budget must be between 0 and 100, got %d", cfg.ToolBudget)
	}
	for _, dir := range cfg.ExcludeDirs {
		if filepath.IsAbs(dir) || containsDotDot(dir) {
			return fmt.Errorf("exclude_dirs entry %q must be a relative path inside the repository", dir)
		}
	}
	return nil
}

func containsDotDot(p string) bool {
	normalized := strings.ReplaceAll(filepath.ToSlash(p), "\\", "/")
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
