package repomanager

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sevigo/goframe/schema"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/storage"
)

// RepoSearcher answers semantic queries against a single repository's
// collection. Analysis-time tooling receives one of these so a review can
// never search outside the repository it is reviewing.
type RepoSearcher struct {
	vectorStore storage.VectorStore
	collection  string
	logger      *slog.Logger
}

// SearcherFor returns a searcher scoped to the record's collection.
func (m *manager) SearcherFor(rec *storage.Repository) *RepoSearcher {
	return &RepoSearcher{
		vectorStore: m.vectorStore,
		collection:  rec.CollectionName,
		logger:      m.logger,
	}
}

// Search runs a similarity query and converts the results. Filters narrow
// hits to files whose path matches one of the given patterns; an empty
// filter list keeps everything.
func (s *RepoSearcher) Search(ctx context.Context, query string, filters []string, limit int) ([]core.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}

	// Over-fetch when filtering so path filters don't starve the result set.
	fetch := limit
	if len(filters) > 0 {
		fetch = limit * 4
	}

	docs, err := s.vectorStore.SimilaritySearch(ctx, s.collection, query, fetch)
	if err != nil {
		return nil, fmt.Errorf("similarity search in %s: %w", s.collection, err)
	}

	hits := make([]core.SearchHit, 0, limit)
	for _, doc := range docs {
		source, _ := doc.Metadata["source"].(string)
		if source == "" || !matchesFilters(source, filters) {
			continue
		}
		hits = append(hits, core.SearchHit{
			FilePath: source,
			Snippet:  snippetFor(doc),
			Score:    docScore(doc),
		})
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

func matchesFilters(source string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if f == "" {
			continue
		}
		if ok, err := filepath.Match(f, filepath.Base(source)); err == nil && ok {
			return true
		}
		if strings.Contains(source, f) {
			return true
		}
	}
	return false
}

// snippetFor prefers the enclosing declaration text over the raw chunk when
// the indexer stored one.
func snippetFor(doc schema.Document) string {
	if parent, ok := doc.Metadata["full_parent_text"].(string); ok && parent != "" {
		return parent
	}
	return doc.PageContent
}

func docScore(doc schema.Document) float64 {
	switch v := doc.Metadata["score"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	}
	return 0
}
