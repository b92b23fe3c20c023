// Package llm implements the analysis collaborator: it renders one prompt
// per (role, file), calls the configured model, and parses the response
// into review issues.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/core"
)

// maxPromptTokens bounds the rendered prompt. Oversized context sections
// are truncated before the call, never after.
const maxPromptTokens = 6000

//go:generate mockgen -destination=../../mocks/mock_analyzer.go -package=mocks github.com/driftaldev/redline/internal/core Analyzer

// RoleAnalyzer implements core.Analyzer on top of a goframe model.
type RoleAnalyzer struct {
	cfg       *config.AIConfig
	model     llms.Model
	promptMgr *PromptManager
	logger    *slog.Logger
}

// NewRoleAnalyzer creates the production analyzer.
func NewRoleAnalyzer(cfg *config.AIConfig, model llms.Model, promptMgr *PromptManager, logger *slog.Logger) *RoleAnalyzer {
	return &RoleAnalyzer{
		cfg:       cfg,
		model:     model,
		promptMgr: promptMgr,
		logger:    logger,
	}
}

// AnalyzeRole runs one role over one file. A model response that contains
// no issues yields an empty slice, not an error.
func (a *RoleAnalyzer) AnalyzeRole(ctx context.Context, role core.Role, input core.RoleInput) ([]core.ReviewIssue, error) {
	key, err := PromptKeyForRole(role)
	if err != nil {
		return nil, err
	}

	prompt, err := a.promptMgr.Render(key, ModelProvider(a.cfg.LLMProvider), promptData(input))
	if err != nil {
		return nil, fmt.Errorf("rendering %s prompt: %w", role, err)
	}

	timeout := a.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}

	start := time.Now()
	response, err := a.generateWithTimeout(ctx, prompt, timeout)
	if err != nil {
		return nil, fmt.Errorf("%s analysis of %s: %w", role, input.FilePath, err)
	}
	a.logger.Debug("model responded",
		"role", string(role), "file", input.FilePath, "elapsed", time.Since(start))

	issues, err := ParseIssues(response)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response for %s: %w", role, input.FilePath, err)
	}

	for i := range issues {
		issues[i].Role = role
		if issues[i].Location.File == "" {
			issues[i].Location.File = input.FilePath
		}
		if issues[i].ID == "" {
			issues[i].ID = issues[i].Fingerprint()
		}
	}
	return issues, nil
}

// generateWithTimeout wraps model generation with a hard deadline so a
// hanging client cannot stall a role past its slot.
func (a *RoleAnalyzer) generateWithTimeout(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := a.model.Call(ctx, prompt)
		select {
		case resultCh <- result{resp: resp, err: err}:
		case <-ctx.Done():
		}
	}()

	select {
	case r := <-resultCh:
		return r.resp, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// promptData maps a RoleInput onto the template fields shared by all role
// prompts, truncating the open-ended sections to keep the prompt bounded.
func promptData(input core.RoleInput) map[string]string {
	var snippets strings.Builder
	for _, hit := range input.RelatedSnippets {
		fmt.Fprintf(&snippets, "--- %s (score %.2f)\n%s\n", hit.FilePath, hit.Score, hit.Snippet)
	}

	return map[string]string{
		"FilePath":           input.FilePath,
		"Language":           input.Language,
		"Diff":               TruncateToTokens(input.Diff, maxPromptTokens/2),
		"Context":            TruncateToTokens(input.ContextSummary, maxPromptTokens/4),
		"RelatedSnippets":    TruncateToTokens(snippets.String(), maxPromptTokens/4),
		"CustomInstructions": strings.Join(input.CustomInstructions, "\n"),
	}
}
