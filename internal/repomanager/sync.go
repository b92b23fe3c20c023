package repomanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/storage"
)

const cloneTimeout = 5 * time.Minute

// SyncRemote clones or updates a remote repository. Concurrent syncs of the
// same repository are serialized; different repositories proceed in parallel.
func (m *manager) SyncRemote(ctx context.Context, event *core.ReviewEvent, token string) (*core.UpdateResult, error) {
	unlock := m.lockRepo(event.RepoFullName)
	defer unlock()

	rec, err := m.store.GetRepositoryByFullName(ctx, event.RepoFullName)
	if err != nil {
		return nil, fmt.Errorf("query repository state: %w", err)
	}

	// A changed embedder model invalidates every stored vector; drop the old
	// collection and re-index from scratch.
	if rec != nil && rec.EmbedderModel != m.cfg.AI.EmbedderModel {
		m.logger.Warn("embedder model changed, forcing full re-index",
			"repo", event.RepoFullName,
			"old", rec.EmbedderModel,
			"new", m.cfg.AI.EmbedderModel)
		if err := m.vectorStore.DeleteCollection(ctx, rec.CollectionName); err != nil {
			m.logger.Warn("delete old collection failed (might not exist)", "error", err)
		}
		rec.EmbedderModel = m.cfg.AI.EmbedderModel
		rec.CollectionName = GenerateCollectionName(event.RepoFullName, m.cfg.AI.EmbedderModel)
		rec.LastIndexedSHA = ""
		if err := m.store.UpdateRepository(ctx, rec); err != nil {
			return nil, fmt.Errorf("update repo record for new embedder: %w", err)
		}
	}

	clonePath := filepath.Join(m.cfg.Server.RepoPath, event.RepoFullName)
	if rec == nil {
		return m.cloneFresh(ctx, event, token, clonePath)
	}
	return m.incrementalUpdate(ctx, event, token, rec)
}

func (m *manager) cloneFresh(ctx context.Context, event *core.ReviewEvent, token, clonePath string) (*core.UpdateResult, error) {
	m.logger.Info("initial clone", "repo", event.RepoFullName)

	if err := os.MkdirAll(filepath.Dir(clonePath), 0o750); err != nil {
		return nil, fmt.Errorf("create parent dir: %w", err)
	}
	m.cleanupRepoDir(clonePath)

	cloneCtx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	if _, err := m.gitClient.Clone(cloneCtx, event.RepoCloneURL, clonePath, token); err != nil {
		m.cleanupRepoDir(clonePath)
		return nil, err
	}

	// PR heads may live on a fork; fetch the PR ref explicitly so the head
	// commit is present.
	if event.PRNumber > 0 {
		refSpec := fmt.Sprintf("+refs/pull/%d/head:refs/remotes/origin/pr/%d", event.PRNumber, event.PRNumber)
		if err := m.gitClient.Fetch(cloneCtx, clonePath, refSpec); err != nil {
			m.cleanupRepoDir(clonePath)
			return nil, fmt.Errorf("fetch pr ref: %w", err)
		}
	}
	if event.HeadSHA != "" {
		if err := m.gitClient.Checkout(cloneCtx, clonePath, event.HeadSHA); err != nil {
			m.cleanupRepoDir(clonePath)
			return nil, err
		}
	}

	headSHA := event.HeadSHA
	if headSHA == "" {
		sha, err := m.gitClient.GetHeadSHA(ctx, clonePath)
		if err != nil {
			m.cleanupRepoDir(clonePath)
			return nil, err
		}
		headSHA = sha
	}

	files, err := listRepoFiles(clonePath, nil)
	if err != nil {
		m.cleanupRepoDir(clonePath)
		return nil, fmt.Errorf("list files after clone: %w", err)
	}

	rec := &storage.Repository{
		FullName:       event.RepoFullName,
		ClonePath:      clonePath,
		CollectionName: GenerateCollectionName(event.RepoFullName, m.cfg.AI.EmbedderModel),
		EmbedderModel:  m.cfg.AI.EmbedderModel,
	}

	// A record may already exist if a previous clone vanished from disk.
	existing, err := m.store.GetRepositoryByFullName(ctx, event.RepoFullName)
	if err != nil {
		m.cleanupRepoDir(clonePath)
		return nil, fmt.Errorf("check existing repo record: %w", err)
	}
	if existing != nil {
		rec.ID = existing.ID
		err = m.store.UpdateRepository(ctx, rec)
	} else {
		err = m.store.CreateRepository(ctx, rec)
	}
	if err != nil {
		m.cleanupRepoDir(clonePath)
		return nil, fmt.Errorf("store repo record: %w", err)
	}

	return &core.UpdateResult{
		FilesToAddOrUpdate: files,
		RepoPath:           clonePath,
		RepoFullName:       event.RepoFullName,
		HeadSHA:            headSHA,
		IsInitialClone:     true,
	}, nil
}

func (m *manager) incrementalUpdate(ctx context.Context, event *core.ReviewEvent, token string, rec *storage.Repository) (*core.UpdateResult, error) {
	gitRepo, err := m.gitClient.Open(rec.ClonePath)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			m.logger.Warn("repo missing on disk, falling back to fresh clone", "path", rec.ClonePath)
			return m.cloneFresh(ctx, event, token, rec.ClonePath)
		}
		return nil, err
	}

	if event.PRNumber > 0 {
		refSpec := fmt.Sprintf("+refs/pull/%d/head:refs/remotes/origin/pr/%d", event.PRNumber, event.PRNumber)
		if err = m.gitClient.Fetch(ctx, rec.ClonePath, refSpec); err != nil {
			return nil, fmt.Errorf("fetch pr ref: %w", err)
		}
	} else {
		if err = m.gitClient.Fetch(ctx, rec.ClonePath); err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
	}
	if err = m.gitClient.Checkout(ctx, rec.ClonePath, event.HeadSHA); err != nil {
		return nil, err
	}

	// Without a recorded SHA there is nothing to diff against.
	if rec.LastIndexedSHA == "" {
		m.logger.Info("no previous index SHA, listing all files", "repo", event.RepoFullName)
		files, err := listRepoFiles(rec.ClonePath, nil)
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		return &core.UpdateResult{
			FilesToAddOrUpdate: files,
			RepoPath:           rec.ClonePath,
			RepoFullName:       event.RepoFullName,
			HeadSHA:            event.HeadSHA,
			IsInitialClone:     true,
		}, nil
	}

	added, modified, deleted, err := m.gitClient.Diff(gitRepo, rec.LastIndexedSHA, event.HeadSHA)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", rec.LastIndexedSHA, event.HeadSHA, err)
	}

	return &core.UpdateResult{
		FilesToAddOrUpdate: append(added, modified...),
		FilesToDelete:      deleted,
		RepoPath:           rec.ClonePath,
		RepoFullName:       event.RepoFullName,
		HeadSHA:            event.HeadSHA,
		IsInitialClone:     false,
	}, nil
}
