// Package pipeline drives one review run through its five stages: change
// classification, context gathering, parallel per-role analysis, synthesis,
// and ranking.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftaldev/redline/internal/classify"
	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/depgraph"
	"github.com/driftaldev/redline/internal/diff"
	"github.com/driftaldev/redline/internal/rank"
	"github.com/driftaldev/redline/internal/toolcache"
)

// Stage names one pipeline state. Transitions are strictly linear.
type Stage string

const (
	StageAnalyzeChanges   Stage = "analyze_changes"
	StageGatherContext    Stage = "gather_context"
	StageParallelAnalysis Stage = "parallel_analysis"
	StageSynthesize       Stage = "synthesize"
	StageRank             Stage = "rank"
	StageDone             Stage = "done"
)

// ProgressFunc receives per-role progress: how many files that role has
// finished, the total file count, and a "role:file" step label.
type ProgressFunc func(completed, total int, step string)

// Options tunes one run. Zero values fall back to sensible defaults.
type Options struct {
	// Roles to run, in synthesis order. Empty means all built-in roles.
	Roles []core.Role

	// MaxDepth bounds dependency traversal.
	MaxDepth int

	// ToolBudget is the per-capability uncached call budget for each
	// (file, role) pair.
	ToolBudget int

	// CacheTTL bounds the lifetime of the shared lookup cache.
	CacheTTL time.Duration

	// MinConfidence and MinSeverity filter the final report.
	MinConfidence float64
	MinSeverity   core.Severity

	// CustomInstructions are appended to every role prompt.
	CustomInstructions []string

	Progress ProgressFunc
}

func (o *Options) withDefaults() Options {
	opts := *o
	if len(opts.Roles) == 0 {
		opts.Roles = core.AllRoles
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 2
	}
	if opts.ToolBudget <= 0 {
		opts.ToolBudget = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = toolcache.DefaultTTL
	}
	if opts.Progress == nil {
		opts.Progress = func(int, int, string) {}
	}
	return opts
}

// Coordinator runs reviews. It is safe for concurrent use; all per-run state
// lives on the stack of Run.
type Coordinator struct {
	analyzer   core.Analyzer
	searcher   toolcache.Searcher
	classifier *classify.Classifier
	logger     *slog.Logger
}

// New creates a Coordinator. The searcher may be nil when no semantic index
// is available; lookups then degrade to structured failures.
func New(analyzer core.Analyzer, searcher toolcache.Searcher, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		analyzer:   analyzer,
		searcher:   searcher,
		classifier: classify.New(logger),
		logger:     logger,
	}
}

// Run executes one full review over the parsed diff of a repository rooted
// at repoRoot. The context deadline, if any, cancels in-flight roles.
func (c *Coordinator) Run(ctx context.Context, repoRoot string, files []diff.File, opts Options) (*core.ReviewResults, error) {
	start := time.Now()
	o := opts.withDefaults()

	analysis := c.analyzeChanges(files)
	reviewable, contexts := c.gatherContext(ctx, repoRoot, files, o)

	perRole, err := c.parallelAnalysis(ctx, repoRoot, reviewable, contexts, analysis, o)
	if err != nil {
		return nil, err
	}

	merged := c.synthesize(perRole, o.Roles)

	c.logStage(StageRank, "issues", len(merged))
	ranked := rank.Process(merged, rank.Options{
		MinConfidence: o.MinConfidence,
		MinSeverity:   o.MinSeverity,
	})

	c.logStage(StageDone, "issues", len(ranked), "duration", time.Since(start))
	return &core.ReviewResults{
		Issues:        ranked,
		FilesReviewed: paths(reviewable),
		Duration:      time.Since(start),
		Analysis:      analysis,
	}, nil
}

func (c *Coordinator) logStage(stage Stage, args ...any) {
	c.logger.Info("pipeline stage", append([]any{"stage", string(stage)}, args...)...)
}

// analyzeChanges classifies the diff. An empty diff degrades to the default
// classification instead of aborting the run.
func (c *Coordinator) analyzeChanges(files []diff.File) core.ChangeAnalysis {
	c.logStage(StageAnalyzeChanges, "files", len(files))
	if len(files) == 0 {
		c.logger.Warn("empty diff, using default classification")
		return core.DefaultChangeAnalysis()
	}
	return c.classifier.Classify(files)
}

// gatherContext selects the reviewable files and enriches each with its
// dependency context. Enrichment is best-effort per file.
func (c *Coordinator) gatherContext(ctx context.Context, repoRoot string, files []diff.File, o Options) ([]diff.File, map[string]core.EnrichedContext) {
	var reviewable []diff.File
	for _, f := range files {
		if isReviewable(&f) {
			reviewable = append(reviewable, f)
		}
	}
	c.logStage(StageGatherContext, "reviewable", len(reviewable), "changed", len(files))

	resolver := depgraph.NewResolver(repoRoot, c.logger)
	contexts := make(map[string]core.EnrichedContext, len(reviewable))
	for _, f := range reviewable {
		if ctx.Err() != nil {
			break
		}
		contexts[f.Path] = resolver.Enrich(ctx, f.Path, o.MaxDepth, false)
	}
	return reviewable, contexts
}

// isReviewable reports whether a changed file gets analyzed: present after
// the change, textual, and in the supported source set.
func isReviewable(f *diff.File) bool {
	return f.Status != diff.StatusDeleted && !f.IsBinary && classify.IsSourceFile(f.Path)
}

// parallelAnalysis fans out one goroutine per role. Within a role, files are
// analyzed strictly sequentially; across roles everything runs concurrently.
func (c *Coordinator) parallelAnalysis(
	ctx context.Context,
	repoRoot string,
	reviewable []diff.File,
	contexts map[string]core.EnrichedContext,
	analysis core.ChangeAnalysis,
	o Options,
) ([][]core.ReviewIssue, error) {
	c.logStage(StageParallelAnalysis, "roles", len(o.Roles), "files", len(reviewable))

	cache := toolcache.NewCache(o.CacheTTL)
	perRole := make([][]core.ReviewIssue, len(o.Roles))

	g, gctx := errgroup.WithContext(ctx)
	for i, role := range o.Roles {
		view, ok := roleRegistry[role]
		if !ok {
			return nil, fmt.Errorf("no registered analysis for role %q", role)
		}

		g.Go(func() error {
			for done, f := range reviewable {
				if err := gctx.Err(); err != nil {
					return err
				}
				issues := c.analyzeFile(gctx, repoRoot, role, view, &f, contexts[f.Path], cache, o)
				perRole[i] = append(perRole[i], c.sanitize(issues, role, reviewable)...)
				o.Progress(done+1, len(reviewable), string(role)+":"+f.Path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parallel analysis: %w", err)
	}
	return perRole, nil
}

// analyzeFile runs one role over one file. Failures and panics skip the file
// for that role only.
func (c *Coordinator) analyzeFile(
	ctx context.Context,
	repoRoot string,
	role core.Role,
	view roleView,
	f *diff.File,
	enriched core.EnrichedContext,
	cache *toolcache.Cache,
	o Options,
) (issues []core.ReviewIssue) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("analyzer panicked, skipping file for role",
				"role", string(role), "file", f.Path, "panic", r)
			issues = nil
		}
	}()

	gateway := toolcache.NewGateway(f.Path, repoRoot, cache, o.ToolBudget, c.searcher, c.logger)

	input := core.RoleInput{
		FilePath:           f.Path,
		Language:           languageForPath(f.Path),
		Diff:               f.Unified(),
		ContextSummary:     view.summarize(enriched),
		CustomInstructions: o.CustomInstructions,
	}

	if c.searcher != nil {
		if res := gateway.Search(ctx, view.searchQuery(f.Path), nil, 3); res.OK {
			input.RelatedSnippets = res.Hits
		}
	}

	result, err := c.analyzer.AnalyzeRole(ctx, role, input)
	if err != nil {
		c.logger.Warn("role analysis failed, skipping file",
			"role", string(role), "file", f.Path, "error", err)
		return nil
	}
	return result
}

// sanitize enforces the collaborator boundary: defaults for missing severity
// and confidence, and locations constrained to reviewable files.
func (c *Coordinator) sanitize(issues []core.ReviewIssue, role core.Role, reviewable []diff.File) []core.ReviewIssue {
	allowed := make(map[string]bool, len(reviewable))
	for i := range reviewable {
		allowed[reviewable[i].Path] = true
	}

	kept := issues[:0:0]
	for _, issue := range issues {
		if !allowed[issue.Location.File] {
			c.logger.Warn("dropping issue outside reviewed files",
				"role", string(role), "file", issue.Location.File, "title", issue.Title)
			continue
		}
		if !issue.Severity.IsValid() {
			issue.Severity = core.SeverityMedium
		}
		if issue.Confidence <= 0 {
			issue.Confidence = 0.7
		} else if issue.Confidence > 1 {
			issue.Confidence = 1
		}
		if issue.Role == "" {
			issue.Role = role
		}
		if issue.ID == "" {
			issue.ID = issue.Fingerprint()
		}
		kept = append(kept, issue)
	}
	return kept
}

// synthesize concatenates role outputs in fixed role-major order, preserving
// each role's file-iteration order.
func (c *Coordinator) synthesize(perRole [][]core.ReviewIssue, roles []core.Role) []core.ReviewIssue {
	total := 0
	for _, issues := range perRole {
		total += len(issues)
	}
	c.logStage(StageSynthesize, "roles", len(roles), "issues", total)

	merged := make([]core.ReviewIssue, 0, total)
	for _, issues := range perRole {
		merged = append(merged, issues...)
	}
	return merged
}

func paths(files []diff.File) []string {
	out := make([]string, len(files))
	for i := range files {
		out[i] = files[i].Path
	}
	return out
}
