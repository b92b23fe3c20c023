package repomanager

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sevigo/goframe/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/gitutil"
	"github.com/driftaldev/redline/internal/storage"
)

type fakeStore struct {
	repos map[string]*storage.Repository
}

func (s *fakeStore) GetRepositoryByFullName(_ context.Context, fullName string) (*storage.Repository, error) {
	if r, ok := s.repos[fullName]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateRepository(_ context.Context, repo *storage.Repository) error {
	if s.repos == nil {
		s.repos = make(map[string]*storage.Repository)
	}
	repo.ID = int64(len(s.repos) + 1)
	cp := *repo
	s.repos[repo.FullName] = &cp
	return nil
}

func (s *fakeStore) UpdateRepository(_ context.Context, repo *storage.Repository) error {
	cp := *repo
	s.repos[repo.FullName] = &cp
	return nil
}

func (s *fakeStore) SaveRun(_ context.Context, _ *core.ReviewRun) error { return nil }
func (s *fakeStore) GetRecentRuns(_ context.Context, _ int) ([]core.ReviewRun, error) {
	return nil, nil
}
func (s *fakeStore) GetRunByID(_ context.Context, _ int64) (*core.ReviewRun, error) {
	return nil, nil
}

type fakeVectorStore struct {
	added   []schema.Document
	deleted []string
}

func (v *fakeVectorStore) AddDocuments(_ context.Context, _ string, docs []schema.Document) error {
	v.added = append(v.added, docs...)
	return nil
}

func (v *fakeVectorStore) SimilaritySearch(_ context.Context, _, _ string, _ int) ([]schema.Document, error) {
	return nil, nil
}

func (v *fakeVectorStore) DeleteCollection(_ context.Context, name string) error {
	v.deleted = append(v.deleted, name)
	return nil
}

func newTestManager(t *testing.T, vs *fakeVectorStore) (*manager, *fakeStore) {
	t.Helper()
	store := &fakeStore{repos: make(map[string]*storage.Repository)}
	cfg := &config.Config{}
	cfg.AI.EmbedderModel = "nomic-embed-text"
	cfg.Server.RepoPath = t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	m := New(cfg, store, vs, gitutil.NewClient(logger), nil, logger).(*manager)
	return m, store
}

func commitFile(t *testing.T, repoPath, name, content string) string {
	t.Helper()
	repo, err := git.PlainOpen(repoPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, name), []byte(content), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func TestScanLocalRepoFullThenIncremental(t *testing.T) {
	vs := &fakeVectorStore{}
	m, _ := newTestManager(t, vs)

	repoPath := initRepo(t)
	firstSHA := commitFile(t, repoPath, "main.go", "package main\n")

	result, err := m.ScanLocalRepo(context.Background(), repoPath, "acme/widget", false)
	require.NoError(t, err)
	assert.True(t, result.IsInitialClone)
	assert.Equal(t, firstSHA, result.HeadSHA)
	assert.Contains(t, result.FilesToAddOrUpdate, "main.go")

	require.NoError(t, m.UpdateRepoSHA(context.Background(), "acme/widget", firstSHA))

	secondSHA := commitFile(t, repoPath, "util.go", "package main\n\nfunc helper() {}\n")

	result, err = m.ScanLocalRepo(context.Background(), repoPath, "acme/widget", false)
	require.NoError(t, err)
	assert.False(t, result.IsInitialClone)
	assert.Equal(t, secondSHA, result.HeadSHA)
	assert.Equal(t, []string{"util.go"}, result.FilesToAddOrUpdate)
	assert.Empty(t, result.FilesToDelete)
}

func TestScanLocalRepoNoChanges(t *testing.T) {
	vs := &fakeVectorStore{}
	m, _ := newTestManager(t, vs)

	repoPath := initRepo(t)
	sha := commitFile(t, repoPath, "main.go", "package main\n")

	_, err := m.ScanLocalRepo(context.Background(), repoPath, "acme/widget", false)
	require.NoError(t, err)
	require.NoError(t, m.UpdateRepoSHA(context.Background(), "acme/widget", sha))

	result, err := m.ScanLocalRepo(context.Background(), repoPath, "acme/widget", false)
	require.NoError(t, err)
	assert.Empty(t, result.FilesToAddOrUpdate)
	assert.Empty(t, result.FilesToDelete)
	assert.Equal(t, sha, result.HeadSHA)
}

func TestScanLocalRepoEmbedderChangeForcesRescan(t *testing.T) {
	vs := &fakeVectorStore{}
	m, store := newTestManager(t, vs)

	repoPath := initRepo(t)
	sha := commitFile(t, repoPath, "main.go", "package main\n")

	_, err := m.ScanLocalRepo(context.Background(), repoPath, "acme/widget", false)
	require.NoError(t, err)
	require.NoError(t, m.UpdateRepoSHA(context.Background(), "acme/widget", sha))

	oldCollection := store.repos["acme/widget"].CollectionName
	m.cfg.AI.EmbedderModel = "mxbai-embed-large"

	result, err := m.ScanLocalRepo(context.Background(), repoPath, "acme/widget", false)
	require.NoError(t, err)
	assert.True(t, result.IsInitialClone, "model change must trigger a full re-scan")
	assert.Contains(t, vs.deleted, oldCollection)
	assert.Equal(t, GenerateCollectionName("acme/widget", "mxbai-embed-large"),
		store.repos["acme/widget"].CollectionName)
}

func TestGenerateCollectionName(t *testing.T) {
	tests := []struct {
		repo     string
		embedder string
		want     string
	}{
		{"Acme/Widget", "nomic-embed-text:latest", "repo-acme-widget-nomic-embed-text"},
		{"owner/repo.name", "mxbai-embed-large", "repo-owner-reponame-mxbai-embed-large"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateCollectionName(tt.repo, tt.embedder))
	}
}

func TestParseRemoteURL(t *testing.T) {
	name, ok := parseRemoteURL("https://github.com/acme/widget.git")
	require.True(t, ok)
	assert.Equal(t, "acme/widget", name)

	name, ok = parseRemoteURL("git@github.com:acme/widget.git")
	require.True(t, ok)
	assert.Equal(t, "acme/widget", name)

	_, ok = parseRemoteURL("not a url")
	assert.False(t, ok)
}

func TestFilterFiles(t *testing.T) {
	repoCfg := &core.RepoConfig{
		ExcludeDirs: []string{"vendor", "dist"},
		ExcludeExts: []string{".md", "lock"},
	}

	files := []string{
		"main.go",
		"vendor/lib/lib.go",
		"docs/README.md",
		"go.lock",
		"internal/service.go",
		".github/workflows/ci.yml",
	}

	got := filterFiles(files, repoCfg)
	assert.Equal(t, []string{"main.go", "internal/service.go"}, got)
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, isTestFile("internal/foo/foo_test.go"))
	assert.True(t, isTestFile("src/widget.spec.ts"))
	assert.True(t, isTestFile("tests/helpers.py"))
	assert.False(t, isTestFile("internal/foo/foo.go"))
}

func TestChunkIDDeterministic(t *testing.T) {
	a := chunkID("main.go", 1, 20)
	b := chunkID("main.go", 1, 20)
	c := chunkID("main.go", 1, 21)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 36, "IDs use the UUID text format")
}
