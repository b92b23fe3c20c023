package jobs

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/github"
	"github.com/driftaldev/redline/internal/repomanager"
	"github.com/driftaldev/redline/internal/storage"
	"github.com/driftaldev/redline/mocks"
)

// fakeRepoManager satisfies repomanager.Manager without git or a vector
// store; the sync and index steps are recorded, not performed.
type fakeRepoManager struct {
	repoPath     string
	syncCalls    int
	indexCalls   int
	indexedFiles []string
}

var _ repomanager.Manager = (*fakeRepoManager)(nil)

func (f *fakeRepoManager) SyncRemote(_ context.Context, event *core.ReviewEvent, _ string) (*core.UpdateResult, error) {
	f.syncCalls++
	return &core.UpdateResult{
		RepoPath:           f.repoPath,
		RepoFullName:       event.RepoFullName,
		HeadSHA:            event.HeadSHA,
		FilesToAddOrUpdate: []string{"auth.go"},
	}, nil
}

func (f *fakeRepoManager) ScanLocalRepo(_ context.Context, repoPath, repoFullName string, _ bool) (*core.UpdateResult, error) {
	return &core.UpdateResult{RepoPath: repoPath, RepoFullName: repoFullName}, nil
}

func (f *fakeRepoManager) Index(_ context.Context, _ *storage.Repository, result *core.UpdateResult, _ *core.RepoConfig) error {
	f.indexCalls++
	f.indexedFiles = append(f.indexedFiles, result.FilesToAddOrUpdate...)
	return nil
}

func (f *fakeRepoManager) GetRepoRecord(_ context.Context, _ string) (*storage.Repository, error) {
	return nil, nil
}

func (f *fakeRepoManager) UpdateRepoSHA(_ context.Context, _, _ string) error { return nil }

func (f *fakeRepoManager) SearcherFor(_ *storage.Repository) *repomanager.RepoSearcher { return nil }

const prDiff = `diff --git a/auth.go b/auth.go
--- a/auth.go
+++ b/auth.go
@@ -1,2 +1,3 @@
 package auth
+const token = "hunter2"

`

func TestReviewPullRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMgr := &fakeRepoManager{repoPath: t.TempDir()}

	analyzer := mocks.NewMockAnalyzer(ctrl)
	analyzer.EXPECT().
		AnalyzeRole(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, role core.Role, input core.RoleInput) ([]core.ReviewIssue, error) {
			if role != core.RoleSecurity {
				return nil, nil
			}
			return []core.ReviewIssue{{
				Type:       core.IssueTypeSecurity,
				Severity:   core.SeverityCritical,
				Confidence: 0.95,
				Title:      "Hardcoded credential",
				Location:   core.Location{File: input.FilePath, Line: 2},
			}}, nil
		}).
		AnyTimes()

	ghClient := mocks.NewMockClient(ctrl)
	ghClient.EXPECT().
		GetPullRequestDiff(gomock.Any(), "acme", "app", 7).
		Return(prDiff, nil)
	ghClient.EXPECT().
		GetChangedFiles(gomock.Any(), "acme", "app", 7).
		Return([]github.ChangedFile{
			{Filename: "auth.go", Patch: "@@ -1,2 +1,3 @@\n package auth\n+const token = \"hunter2\""},
		}, nil)

	job := NewReviewJob(&config.Config{}, nil, repoMgr, analyzer, nil, slog.Default())

	event := webhookEvent()
	event.RepoOwner = "acme"
	event.RepoName = "app"
	event.RepoFullName = "acme/app"
	event.PRNumber = 7
	event.HeadSHA = "abc123"

	results, patches, err := job.ReviewPullRequest(context.Background(), event, ghClient, "token")
	require.NoError(t, err)

	assert.Equal(t, 1, repoMgr.syncCalls)
	assert.Equal(t, 1, repoMgr.indexCalls)
	assert.Equal(t, []string{"auth.go"}, repoMgr.indexedFiles)
	require.Len(t, results.Issues, 1)
	assert.Equal(t, "Hardcoded credential", results.Issues[0].Title)
	assert.Equal(t, core.RoleSecurity, results.Issues[0].Role)
	assert.Contains(t, patches, "auth.go")
}

func TestRecordRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	var saved *core.ReviewRun
	store.EXPECT().
		SaveRun(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, run *core.ReviewRun) error {
			saved = run
			return nil
		})

	job := NewReviewJob(&config.Config{}, store, &fakeRepoManager{}, mocks.NewMockAnalyzer(ctrl), nil, slog.Default())

	results := &core.ReviewResults{
		Issues: []core.ReviewIssue{
			{Severity: core.SeverityCritical},
			{Severity: core.SeverityLow},
		},
		FilesReviewed: []string{"auth.go"},
		Analysis:      core.ChangeAnalysis{ChangeType: core.ChangeTypeFeature, RiskScore: 40},
	}
	event := webhookEvent()
	job.RecordRun(context.Background(), event, results, 1500*time.Millisecond, core.RunStatusCompleted)

	require.NotNil(t, saved)
	assert.Equal(t, event.RepoFullName, saved.RepoFullName)
	assert.Equal(t, 2, saved.IssueCount)
	assert.Equal(t, 1, saved.CriticalCount)
	assert.Equal(t, int64(1500), saved.DurationMillis)
	assert.Equal(t, core.RunStatusCompleted, saved.Status)
}

func TestRecordRunWithoutStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	job := NewReviewJob(&config.Config{}, nil, &fakeRepoManager{}, mocks.NewMockAnalyzer(ctrl), nil, slog.Default())

	// Must not panic when no history store is configured.
	job.RecordRun(context.Background(), webhookEvent(), nil, time.Second, core.RunStatusFailed)
}

func TestPipelineOptionsRepoOverrides(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := &config.Config{
		Review: config.ReviewConfig{
			Roles:         []string{"security", "logic"},
			ToolBudget:    20,
			MaxDepth:      2,
			MinConfidence: 0.5,
			MinSeverity:   "low",
		},
	}
	job := NewReviewJob(cfg, nil, &fakeRepoManager{}, mocks.NewMockAnalyzer(ctrl), nil, slog.Default())

	opts := job.pipelineOptions(nil, nil)
	assert.Equal(t, []core.Role{core.RoleSecurity, core.RoleLogic}, opts.Roles)
	assert.Equal(t, 20, opts.ToolBudget)
	assert.Equal(t, core.SeverityLow, opts.MinSeverity)

	repoCfg := &core.RepoConfig{
		Roles:              []string{"performance"},
		ToolBudget:         5,
		MinConfidence:      0.8,
		MinSeverity:        "high",
		CustomInstructions: []string{"Flag any use of unsafe."},
	}
	opts = job.pipelineOptions(repoCfg, nil)
	assert.Equal(t, []core.Role{core.RolePerformance}, opts.Roles)
	assert.Equal(t, 5, opts.ToolBudget)
	assert.Equal(t, 0.8, opts.MinConfidence)
	assert.Equal(t, core.SeverityHigh, opts.MinSeverity)
	assert.Equal(t, []string{"Flag any use of unsafe."}, opts.CustomInstructions)
	assert.Equal(t, 2, opts.MaxDepth, "repo config cannot change traversal depth")
}

func TestReviewPullRequestDiffFetchFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMgr := &fakeRepoManager{repoPath: t.TempDir()}

	ghClient := mocks.NewMockClient(ctrl)
	ghClient.EXPECT().
		GetPullRequestDiff(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", assert.AnError)

	job := NewReviewJob(&config.Config{}, nil, repoMgr, mocks.NewMockAnalyzer(ctrl), nil, slog.Default())

	_, _, err := job.ReviewPullRequest(context.Background(), webhookEvent(), ghClient, "token")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "diff"))
}
