// Package repomanager keeps local clones of reviewed repositories in sync
// with their remotes and maintains the semantic search index built from them.
package repomanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"log/slog"

	"github.com/sevigo/goframe/parsers"

	"github.com/driftaldev/redline/internal/config"
	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/gitutil"
	"github.com/driftaldev/redline/internal/storage"
)

// Manager owns the lifecycle of repository clones and their search index.
type Manager interface {
	// SyncRemote clones or incrementally updates a remote repository so its
	// working tree matches the event's head SHA.
	SyncRemote(ctx context.Context, event *core.ReviewEvent, token string) (*core.UpdateResult, error)

	// ScanLocalRepo inspects an already-present local repository and reports
	// which files need (re)indexing since the last indexed commit.
	ScanLocalRepo(ctx context.Context, repoPath, repoFullName string, force bool) (*core.UpdateResult, error)

	// Index chunks the changed files and pushes them into the vector store,
	// then records the indexed SHA.
	Index(ctx context.Context, rec *storage.Repository, result *core.UpdateResult, repoCfg *core.RepoConfig) error

	GetRepoRecord(ctx context.Context, repoFullName string) (*storage.Repository, error)
	UpdateRepoSHA(ctx context.Context, repoFullName, newSHA string) error

	// SearcherFor returns a semantic searcher scoped to one repository's
	// collection.
	SearcherFor(rec *storage.Repository) *RepoSearcher
}

type manager struct {
	cfg            *config.Config
	store          storage.Store
	vectorStore    storage.VectorStore
	gitClient      *gitutil.Client
	parserRegistry parsers.ParserRegistry
	logger         *slog.Logger

	// repoMux serializes sync operations per repository full name.
	repoMux sync.Map
}

// New creates a Manager.
func New(
	cfg *config.Config,
	store storage.Store,
	vectorStore storage.VectorStore,
	gitClient *gitutil.Client,
	parserRegistry parsers.ParserRegistry,
	logger *slog.Logger,
) Manager {
	return &manager{
		cfg:            cfg,
		store:          store,
		vectorStore:    vectorStore,
		gitClient:      gitClient,
		parserRegistry: parserRegistry,
		logger:         logger,
	}
}

func (m *manager) lockRepo(repoFullName string) func() {
	val, _ := m.repoMux.LoadOrStore(repoFullName, &sync.Mutex{})
	mux := val.(*sync.Mutex)
	mux.Lock()
	return mux.Unlock
}

func (m *manager) GetRepoRecord(ctx context.Context, repoFullName string) (*storage.Repository, error) {
	return m.store.GetRepositoryByFullName(ctx, repoFullName)
}

func (m *manager) UpdateRepoSHA(ctx context.Context, repoFullName, newSHA string) error {
	rec, err := m.store.GetRepositoryByFullName(ctx, repoFullName)
	if err != nil {
		return fmt.Errorf("get repo for SHA update: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("cannot update SHA for unknown repo %s", repoFullName)
	}
	rec.LastIndexedSHA = newSHA
	return m.store.UpdateRepository(ctx, rec)
}

func (m *manager) cleanupRepoDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		m.logger.Warn("cleanup failed", "path", path, "error", err)
	}
}

// listRepoFiles walks the clone and returns relative paths of regular files,
// honoring the repository's exclusion rules. Hidden directories are always
// skipped.
func listRepoFiles(root string, repoCfg *core.RepoConfig) ([]string, error) {
	if repoCfg == nil {
		repoCfg = core.DefaultRepoConfig()
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && isExcludedDir(d.Name(), repoCfg.ExcludeDirs) {
				return filepath.SkipDir
			}
			return nil
		}
		if isExcludedExt(d.Name(), repoCfg.ExcludeExts) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	return files, err
}

func isExcludedDir(name string, excludes []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ex := range excludes {
		if name == ex {
			return true
		}
	}
	return false
}

func isExcludedExt(name string, excludes []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, ex := range excludes {
		if ext == strings.TrimPrefix(ex, ".") {
			return true
		}
	}
	return false
}

func filterFiles(files []string, repoCfg *core.RepoConfig) []string {
	if repoCfg == nil {
		return files
	}
	kept := files[:0:0]
	for _, f := range files {
		excluded := false
		for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(f)), "/") {
			if part != "." && isExcludedDir(part, repoCfg.ExcludeDirs) {
				excluded = true
				break
			}
		}
		if !excluded && !isExcludedExt(filepath.Base(f), repoCfg.ExcludeExts) {
			kept = append(kept, f)
		}
	}
	return kept
}
