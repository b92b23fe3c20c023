package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/diff"
	"github.com/driftaldev/redline/internal/github"
	"github.com/driftaldev/redline/internal/gitutil"
	"github.com/driftaldev/redline/internal/pipeline"
	"github.com/driftaldev/redline/internal/render"
	"github.com/driftaldev/redline/internal/repomanager"
	"github.com/driftaldev/redline/internal/storage"
	"github.com/driftaldev/redline/internal/toolcache"
)

// ReviewJob performs one full review run: sync and index the repository,
// drive the analysis pipeline over the changed files, post the results, and
// record the run.
type ReviewJob struct {
	cfg       *config.Config
	store     storage.Store
	repoMgr   repomanager.Manager
	analyzer  core.Analyzer
	gitClient *gitutil.Client
	logger    *slog.Logger
}

// NewReviewJob wires a review job from its collaborators.
func NewReviewJob(
	cfg *config.Config,
	store storage.Store,
	repoMgr repomanager.Manager,
	analyzer core.Analyzer,
	gitClient *gitutil.Client,
	logger *slog.Logger,
) *ReviewJob {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if repoMgr == nil {
		panic("repo manager cannot be nil")
	}
	if analyzer == nil {
		panic("analyzer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{
		cfg:       cfg,
		store:     store,
		repoMgr:   repoMgr,
		analyzer:  analyzer,
		gitClient: gitClient,
		logger:    logger,
	}
}

// Run executes the review for a queued event. Webhook events review a pull
// request and post results back to GitHub; local events delegate to
// ReviewLocal and discard the returned report.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := validateEvent(event); err != nil {
		j.logger.Error("event validation failed", "error", err)
		return fmt.Errorf("event validation failed: %w", err)
	}

	if event.IsLocalRun {
		_, err := j.ReviewLocal(ctx, event, nil)
		return err
	}

	j.logger.Info("starting review job", "repo", event.RepoFullName, "pr", event.PRNumber)
	start := time.Now()

	ghClient, token, err := github.NewInstallationClient(ctx, j.cfg, event.InstallationID, j.logger)
	if err != nil {
		return fmt.Errorf("failed to create github client: %w", err)
	}

	pr, err := ghClient.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get pull request: %w", err)
	}
	if pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("pull request %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()
	if event.BaseRef == "" {
		event.BaseRef = pr.GetBase().GetRef()
	}

	statusUpdater := github.NewStatusUpdater(ghClient, j.logger)
	checkRunID, err := statusUpdater.InProgress(ctx, event, "Redline Review", "Analysis in progress...")
	if err != nil {
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	results, patches, err := j.ReviewPullRequest(ctx, event, ghClient, token)
	if err != nil {
		j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Review failed")
		j.RecordRun(ctx, event, nil, time.Since(start), core.RunStatusFailed)
		return err
	}

	summary := render.Markdown(results)
	if err := statusUpdater.PostReview(ctx, event, summary, results, patches); err != nil {
		j.updateStatusOnError(ctx, statusUpdater, event, checkRunID, "Failed to post review")
		j.RecordRun(ctx, event, results, time.Since(start), core.RunStatusFailed)
		return fmt.Errorf("failed to post review: %w", err)
	}

	conclusion := github.Conclusion(results)
	title := fmt.Sprintf("Review Complete: %d issues", len(results.Issues))
	if err := statusUpdater.Completed(ctx, event, checkRunID, conclusion, title, summaryLine(results)); err != nil {
		j.logger.Error("failed to update completion status", "error", err)
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.RecordRun(ctx, event, results, time.Since(start), core.RunStatusCompleted)
	j.logger.Info("review job completed",
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
		"issues", len(results.Issues),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// ReviewPullRequest syncs and indexes the repository, fetches the pull
// request diff, and runs the analysis pipeline over it. It returns the
// results and the per-file patches needed to anchor inline comments. The
// caller owns posting and status updates; the CLI uses this directly with a
// PAT-authenticated client.
func (j *ReviewJob) ReviewPullRequest(ctx context.Context, event *core.ReviewEvent, ghClient github.Client, token string) (*core.ReviewResults, map[string]string, error) {
	syncResult, err := j.repoMgr.SyncRemote(ctx, event, token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sync repository: %w", err)
	}

	repoCfg := j.loadRepoConfig(syncResult.RepoPath)

	rec, err := j.repoMgr.GetRepoRecord(ctx, event.RepoFullName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load repository record: %w", err)
	}

	if err := j.repoMgr.Index(ctx, rec, syncResult, repoCfg); err != nil {
		return nil, nil, fmt.Errorf("failed to index repository: %w", err)
	}

	rawDiff, err := ghClient.GetPullRequestDiff(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch pull request diff: %w", err)
	}
	files, err := diff.ParseString(rawDiff)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse pull request diff: %w", err)
	}

	changed, err := ghClient.GetChangedFiles(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list changed files: %w", err)
	}
	patches := make(map[string]string, len(changed))
	for _, f := range changed {
		patches[f.Filename] = f.Patch
	}

	results, err := j.runPipeline(ctx, syncResult.RepoPath, files, rec, repoCfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("analysis failed: %w", err)
	}
	return results, patches, nil
}

// ReviewLocal reviews a local working tree against its base ref and returns
// the report instead of posting it. The CLI feeds progress into its terminal
// UI through the optional callback.
func (j *ReviewJob) ReviewLocal(ctx context.Context, event *core.ReviewEvent, progress pipeline.ProgressFunc) (*core.ReviewResults, error) {
	if err := validateEvent(event); err != nil {
		return nil, fmt.Errorf("event validation failed: %w", err)
	}

	j.logger.Info("starting local review", "path", event.LocalPath, "base", event.BaseRef)
	start := time.Now()

	scanResult, err := j.repoMgr.ScanLocalRepo(ctx, event.LocalPath, event.RepoFullName, false)
	if err != nil {
		return nil, fmt.Errorf("failed to scan repository: %w", err)
	}
	event.RepoFullName = scanResult.RepoFullName

	repoCfg := j.loadRepoConfig(scanResult.RepoPath)

	rec, err := j.repoMgr.GetRepoRecord(ctx, scanResult.RepoFullName)
	if err != nil {
		return nil, fmt.Errorf("failed to load repository record: %w", err)
	}

	if err := j.repoMgr.Index(ctx, rec, scanResult, repoCfg); err != nil {
		return nil, fmt.Errorf("failed to index repository: %w", err)
	}

	rawDiff, err := j.gitClient.LocalDiff(ctx, event.LocalPath, event.BaseRef)
	if err != nil {
		return nil, fmt.Errorf("failed to diff working tree: %w", err)
	}
	files, err := diff.ParseString(rawDiff)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	results, err := j.runPipeline(ctx, event.LocalPath, files, rec, repoCfg, progress)
	if err != nil {
		j.RecordRun(ctx, event, nil, time.Since(start), core.RunStatusFailed)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	j.RecordRun(ctx, event, results, time.Since(start), core.RunStatusCompleted)
	return results, nil
}

func (j *ReviewJob) runPipeline(
	ctx context.Context,
	repoRoot string,
	files []diff.File,
	rec *storage.Repository,
	repoCfg *core.RepoConfig,
	progress pipeline.ProgressFunc,
) (*core.ReviewResults, error) {
	var searcher toolcache.Searcher
	if rec != nil {
		searcher = j.repoMgr.SearcherFor(rec)
	}
	coord := pipeline.New(j.analyzer, searcher, j.logger)
	return coord.Run(ctx, repoRoot, files, j.pipelineOptions(repoCfg, progress))
}

// pipelineOptions merges the server-level review settings with the
// repository's own .redline.yml overrides.
func (j *ReviewJob) pipelineOptions(repoCfg *core.RepoConfig, progress pipeline.ProgressFunc) pipeline.Options {
	review := j.cfg.Review
	opts := pipeline.Options{
		Roles:         review.ParsedRoles(),
		MaxDepth:      review.MaxDepth,
		ToolBudget:    review.ToolBudget,
		CacheTTL:      review.CacheTTL,
		MinConfidence: review.MinConfidence,
		Progress:      progress,
	}
	if sev, ok := core.ParseSeverity(review.MinSeverity); ok {
		opts.MinSeverity = sev
	}

	if repoCfg != nil {
		if len(repoCfg.Roles) > 0 {
			opts.Roles = repoCfg.EnabledRoles()
		}
		if repoCfg.ToolBudget > 0 {
			opts.ToolBudget = repoCfg.ToolBudget
		}
		if repoCfg.MinConfidence > 0 {
			opts.MinConfidence = repoCfg.MinConfidence
		}
		if sev, ok := core.ParseSeverity(repoCfg.MinSeverity); ok {
			opts.MinSeverity = sev
		}
		opts.CustomInstructions = repoCfg.CustomInstructions
	}
	return opts
}

// loadRepoConfig reads the repository's .redline.yml. A missing file is the
// normal case and yields nil; a malformed one is logged and ignored.
func (j *ReviewJob) loadRepoConfig(repoPath string) *core.RepoConfig {
	repoCfg, err := config.LoadRepoConfig(repoPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			j.logger.Debug("no repository config found, using defaults", "path", repoPath)
		} else {
			j.logger.Warn("invalid repository config, using defaults", "path", repoPath, "error", err)
		}
		return nil
	}
	return repoCfg
}

// RecordRun persists one run summary to the history store. A nil store is a
// no-op so reviews can run without a database.
func (j *ReviewJob) RecordRun(ctx context.Context, event *core.ReviewEvent, results *core.ReviewResults, elapsed time.Duration, status string) {
	if j.store == nil {
		return
	}
	run := &core.ReviewRun{
		RepoFullName:   event.RepoFullName,
		PRNumber:       event.PRNumber,
		HeadSHA:        event.HeadSHA,
		DurationMillis: elapsed.Milliseconds(),
		Status:         status,
	}
	if results != nil {
		counts := results.SeverityCounts()
		run.ChangeType = string(results.Analysis.ChangeType)
		run.Complexity = string(results.Analysis.Complexity)
		run.RiskScore = results.Analysis.RiskScore
		run.FilesReviewed = len(results.FilesReviewed)
		run.IssueCount = len(results.Issues)
		run.CriticalCount = counts[core.SeverityCritical]
		run.HighCount = counts[core.SeverityHigh]
	}
	if err := j.store.SaveRun(ctx, run); err != nil {
		j.logger.Error("failed to save review run", "repo", event.RepoFullName, "error", err)
	}
}

func summaryLine(results *core.ReviewResults) string {
	counts := results.SeverityCounts()
	return fmt.Sprintf("%d issues (%d critical, %d high) across %d files",
		len(results.Issues),
		counts[core.SeverityCritical],
		counts[core.SeverityHigh],
		len(results.FilesReviewed),
	)
}

// updateStatusOnError marks the check run as failed without masking the
// original error.
func (j *ReviewJob) updateStatusOnError(ctx context.Context, statusUpdater github.StatusUpdater, event *core.ReviewEvent, checkRunID int64, message string) {
	if err := statusUpdater.Completed(ctx, event, checkRunID, "failure", "Review Failed", message); err != nil {
		j.logger.Error("failed to update failure status", "error", err)
	}
}
