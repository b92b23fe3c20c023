package repomanager

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sevigo/goframe/embeddings/sparse"
	"github.com/sevigo/goframe/schema"
	"github.com/sevigo/goframe/textsplitter"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/storage"
)

const indexBatchSize = 64

// Index chunks every changed file and upserts the chunks into the
// repository's vector collection. Chunk IDs are deterministic, so
// re-indexing an unchanged file overwrites its previous vectors instead of
// duplicating them. On success the repository's last indexed SHA is advanced.
func (m *manager) Index(ctx context.Context, rec *storage.Repository, result *core.UpdateResult, repoCfg *core.RepoConfig) error {
	if repoCfg == nil {
		repoCfg = core.DefaultRepoConfig()
	}

	files := filterFiles(result.FilesToAddOrUpdate, repoCfg)
	if len(result.FilesToDelete) > 0 {
		// Chunks of deleted files stay in the collection until the next full
		// re-index; they only fade from results as their content goes stale.
		m.logger.Debug("deleted files leave stale chunks until full re-index",
			"repo", rec.FullName, "count", len(result.FilesToDelete))
	}

	m.logger.Info("indexing repository files",
		"repo", rec.FullName,
		"collection", rec.CollectionName,
		"files", len(files),
		"initial", result.IsInitialClone)

	start := time.Now()
	var batch []schema.Document
	var indexed, skipped int

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := m.vectorStore.AddDocuments(ctx, rec.CollectionName, batch); err != nil {
			return fmt.Errorf("add documents to collection %s: %w", rec.CollectionName, err)
		}
		batch = batch[:0]
		return nil
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs := m.processFile(ctx, result.RepoPath, file)
		if len(docs) == 0 {
			skipped++
			continue
		}
		indexed++
		batch = append(batch, docs...)
		if len(batch) >= indexBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	if result.HeadSHA != "" {
		if err := m.UpdateRepoSHA(ctx, rec.FullName, result.HeadSHA); err != nil {
			return fmt.Errorf("record indexed SHA: %w", err)
		}
	}

	m.logger.Info("indexing complete",
		"repo", rec.FullName,
		"indexed", indexed,
		"skipped", skipped,
		"duration", time.Since(start))
	return nil
}

// processFile reads one file and turns it into embeddable chunk documents.
// Files without a registered parser are skipped.
func (m *manager) processFile(ctx context.Context, repoPath, file string) []schema.Document {
	fullPath := filepath.Join(repoPath, file)
	contentBytes, err := os.ReadFile(fullPath)
	if err != nil {
		m.logger.Warn("read file for indexing failed, skipping", "file", file, "error", err)
		return nil
	}

	parser, err := m.parserRegistry.GetParserForFile(fullPath, nil)
	if err != nil {
		m.logger.Debug("no parser for file, skipping", "file", file)
		return nil
	}

	// Qdrant rejects strings that are not valid UTF-8.
	content := strings.ToValidUTF8(string(contentBytes), "")

	chunks, err := parser.Chunk(content, file, nil)
	if err != nil {
		m.logger.Warn("chunking failed, skipping file", "file", file, "error", err)
		return nil
	}

	var fileMeta map[string]any
	if meta, err := parser.ExtractMetadata(content, fullPath); err == nil {
		fileMeta = make(map[string]any)
		if meta.PackageName != "" {
			fileMeta["package_name"] = meta.PackageName
		}
		if len(meta.Imports) > 0 {
			fileMeta["imports"] = meta.Imports
		}
	}

	docs := make([]schema.Document, 0, len(chunks))
	for _, chunk := range chunks {
		doc := schema.NewDocument(chunk.Content, map[string]any{
			"id":               chunkID(file, chunk.LineStart, chunk.LineEnd),
			"source":           file,
			"identifier":       chunk.Identifier,
			"chunk_type":       chunk.Type,
			"line_start":       chunk.LineStart,
			"line_end":         chunk.LineEnd,
			"parent_id":        chunk.ParentID,
			"full_parent_text": textsplitter.TruncateParentText(chunk.FullParentText, 2000),
		})
		for k, v := range fileMeta {
			doc.Metadata[k] = v
		}
		for k, v := range chunk.Annotations {
			doc.Metadata[k] = v
		}
		if isTestFile(file) {
			doc.Metadata["is_test"] = true
		}

		if sparseVec, err := sparse.GenerateSparseVector(ctx, chunk.Content); err == nil {
			doc.Sparse = sparseVec
		} else {
			m.logger.Debug("sparse vector generation failed", "file", file, "error", err)
		}

		docs = append(docs, doc)
	}
	return docs
}

// chunkID derives a stable UUID-format ID from a chunk's position so updates
// overwrite instead of duplicating.
func chunkID(file string, lineStart, lineEnd int) string {
	h := sha256.New()
	h.Write([]byte(file))
	fmt.Fprintf(h, ":%d:%d", lineStart, lineEnd)
	sum := h.Sum(nil)
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

func isTestFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, "_test.go") {
		return true
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.HasSuffix(name, ".test") || strings.HasSuffix(name, ".spec") {
		return true
	}
	if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if part == "test" || part == "tests" || part == "__tests__" {
			return true
		}
	}
	return false
}
