package repomanager

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/storage"
)

// ScanLocalRepo inspects a repository that already lives on disk, either a
// developer checkout or a previous clone, and reports which files changed
// since the last indexed commit.
func (m *manager) ScanLocalRepo(ctx context.Context, repoPath, repoFullName string, force bool) (*core.UpdateResult, error) {
	gitRepo, err := m.gitClient.Open(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open local repo at %s: %w", repoPath, err)
	}

	head, err := gitRepo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	headSHA := head.Hash().String()

	if repoFullName == "" {
		if repoFullName, err = repoFullNameFromRemotes(gitRepo); err != nil {
			return nil, fmt.Errorf("auto-detect repo name: %w (pass the name explicitly as owner/repo)", err)
		}
	}

	unlock := m.lockRepo(repoFullName)
	defer unlock()

	rec, err := m.store.GetRepositoryByFullName(ctx, repoFullName)
	if err != nil {
		return nil, fmt.Errorf("query repository state: %w", err)
	}

	if rec != nil && rec.EmbedderModel != m.cfg.AI.EmbedderModel {
		m.logger.Warn("embedder model changed, forcing full re-scan",
			"repo", repoFullName,
			"old", rec.EmbedderModel,
			"new", m.cfg.AI.EmbedderModel)
		if err := m.vectorStore.DeleteCollection(ctx, rec.CollectionName); err != nil {
			m.logger.Warn("delete old collection failed (might not exist)", "error", err)
		}
		force = true
	}

	if force || rec == nil {
		return m.fullLocalScan(ctx, repoPath, repoFullName, headSHA)
	}
	return m.incrementalLocalScan(ctx, gitRepo, rec, repoPath, headSHA)
}

func (m *manager) fullLocalScan(ctx context.Context, repoPath, repoFullName, headSHA string) (*core.UpdateResult, error) {
	if err := m.ensureRepoRecord(ctx, repoFullName, repoPath); err != nil {
		return nil, err
	}

	files, err := listRepoFiles(repoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list repo files: %w", err)
	}
	return &core.UpdateResult{
		FilesToAddOrUpdate: files,
		RepoPath:           repoPath,
		RepoFullName:       repoFullName,
		HeadSHA:            headSHA,
		IsInitialClone:     true,
	}, nil
}

func (m *manager) incrementalLocalScan(ctx context.Context, gitRepo *git.Repository, rec *storage.Repository, repoPath, headSHA string) (*core.UpdateResult, error) {
	if rec.LastIndexedSHA == headSHA {
		m.logger.Info("nothing changed since last index", "repo", rec.FullName)
		return &core.UpdateResult{
			RepoPath:       repoPath,
			RepoFullName:   rec.FullName,
			HeadSHA:        headSHA,
			IsInitialClone: false,
		}, nil
	}
	if rec.LastIndexedSHA == "" {
		return m.fullLocalScan(ctx, repoPath, rec.FullName, headSHA)
	}

	added, modified, deleted, err := m.gitClient.Diff(gitRepo, rec.LastIndexedSHA, headSHA)
	if err != nil {
		// The last indexed commit may have been rebased away; re-scan.
		m.logger.Warn("diff failed, falling back to full scan", "error", err)
		return m.fullLocalScan(ctx, repoPath, rec.FullName, headSHA)
	}

	m.logger.Info("local scan diff",
		"repo", rec.FullName,
		"added", len(added), "modified", len(modified), "deleted", len(deleted))
	return &core.UpdateResult{
		FilesToAddOrUpdate: append(added, modified...),
		FilesToDelete:      deleted,
		RepoPath:           repoPath,
		RepoFullName:       rec.FullName,
		HeadSHA:            headSHA,
		IsInitialClone:     false,
	}, nil
}

func (m *manager) ensureRepoRecord(ctx context.Context, fullName, clonePath string) error {
	rec, err := m.store.GetRepositoryByFullName(ctx, fullName)
	if err != nil {
		return fmt.Errorf("lookup repo before scan: %w", err)
	}
	if rec == nil {
		rec = &storage.Repository{
			FullName:       fullName,
			ClonePath:      clonePath,
			CollectionName: GenerateCollectionName(fullName, m.cfg.AI.EmbedderModel),
			EmbedderModel:  m.cfg.AI.EmbedderModel,
		}
		if err := m.store.CreateRepository(ctx, rec); err != nil {
			return fmt.Errorf("create repo record: %w", err)
		}
		return nil
	}

	rec.ClonePath = clonePath
	rec.EmbedderModel = m.cfg.AI.EmbedderModel
	rec.CollectionName = GenerateCollectionName(fullName, m.cfg.AI.EmbedderModel)
	if err := m.store.UpdateRepository(ctx, rec); err != nil {
		return fmt.Errorf("update repo record: %w", err)
	}
	return nil
}
