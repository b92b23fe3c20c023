package toolcache

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftaldev/redline/internal/core"
)

// Capability names one budgeted lookup kind. Each gets its own Budget per
// (file, role) pair so costs are attributed to the role that spent them.
type Capability string

const (
	CapabilitySearch      Capability = "search"
	CapabilityReadRelated Capability = "read_related"
	CapabilityFindUsages  Capability = "find_usages"
	CapabilityFindCallers Capability = "find_callers"
)

// AllCapabilities lists every budgeted capability.
var AllCapabilities = []Capability{
	CapabilitySearch,
	CapabilityReadRelated,
	CapabilityFindUsages,
	CapabilityFindCallers,
}

// ErrBudgetExceeded is the message carried by a budget-exceeded Status. It
// is data, not a raised error; a role keeps analyzing without the lookup.
const ErrBudgetExceeded = "budget exceeded"

// Status is the shared outcome header of every gateway result.
type Status struct {
	OK  bool   `json:"ok"`
	Err string `json:"error,omitempty"`
}

// SearchResult is the outcome of a semantic search lookup.
type SearchResult struct {
	Status
	Hits []core.SearchHit `json:"hits,omitempty"`
}

// FileContent is one related file returned by a read lookup.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ReadResult is the outcome of a read-related-files lookup.
type ReadResult struct {
	Status
	Files []FileContent `json:"files,omitempty"`
}

// GrepHit is one match from a usages or callers lookup.
type GrepHit struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Text     string `json:"text"`
}

// GrepResult is the outcome of a find-usages or find-callers lookup.
type GrepResult struct {
	Status
	Hits []GrepHit `json:"hits,omitempty"`
}

// Searcher is the remote code-search backend consumed through the gateway.
type Searcher interface {
	Search(ctx context.Context, query string, filters []string, limit int) ([]core.SearchHit, error)
}

// Gateway is the role-facing tool surface for one (file, role) pair: a
// shared Cache plus one Budget per capability. Every capability follows the
// same sequence: canonical key, cache hit returns without touching budget,
// exhausted budget returns a structured budget-exceeded result without
// performing the operation, a successful operation spends budget and fills
// the cache, and a failed operation touches neither.
type Gateway struct {
	file     string
	root     string
	cache    *Cache
	budgets  map[Capability]*Budget
	searcher Searcher
	logger   *slog.Logger
}

// NewGateway builds a Gateway for one reviewed file. The cache is shared
// across gateways; the budgets are not.
func NewGateway(file, repoRoot string, cache *Cache, budgetLimit int, searcher Searcher, logger *slog.Logger) *Gateway {
	budgets := make(map[Capability]*Budget, len(AllCapabilities))
	for _, cap := range AllCapabilities {
		budgets[cap] = NewBudget(budgetLimit)
	}
	return &Gateway{
		file:     file,
		root:     repoRoot,
		cache:    cache,
		budgets:  budgets,
		searcher: searcher,
		logger:   logger,
	}
}

// Budget exposes the counter for one capability, mostly for tests and
// progress reporting.
func (g *Gateway) Budget(cap Capability) *Budget {
	return g.budgets[cap]
}

// lookup runs the budgeted cache sequence shared by every capability.
func lookup[T any](g *Gateway, cap Capability, key string, op func() (T, error)) (T, Status) {
	if cached, ok := g.cache.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, Status{OK: true}
		}
	}

	budget := g.budgets[cap]
	if budget.Exhausted() {
		g.logger.Debug("tool budget exhausted",
			"file", g.file, "capability", string(cap), "limit", budget.Limit())
		var zero T
		return zero, Status{Err: ErrBudgetExceeded}
	}

	value, err := op()
	if err != nil {
		var zero T
		return zero, Status{Err: err.Error()}
	}

	budget.Spend()
	g.cache.Set(key, value)
	return value, Status{OK: true}
}

// Search performs a semantic code search through the backend.
func (g *Gateway) Search(ctx context.Context, query string, filters []string, limit int) SearchResult {
	if limit <= 0 {
		limit = 5
	}
	key := "search:" + Fingerprint(query, filters, limit)
	hits, status := lookup(g, CapabilitySearch, key, func() ([]core.SearchHit, error) {
		return g.searcher.Search(ctx, query, filters, limit)
	})
	return SearchResult{Status: status, Hits: hits}
}

// ReadRelatedFiles reads up to limit of the given repository-relative paths.
func (g *Gateway) ReadRelatedFiles(_ context.Context, paths []string, limit int) ReadResult {
	if limit <= 0 {
		limit = 3
	}
	key := "read:" + Fingerprint(strings.Join(paths, "\n"), nil, limit)
	files, status := lookup(g, CapabilityReadRelated, key, func() ([]FileContent, error) {
		return g.readFiles(paths, limit)
	})
	return ReadResult{Status: status, Files: files}
}

// FindUsages greps the repository for references to symbol.
func (g *Gateway) FindUsages(ctx context.Context, symbol string, limit int) GrepResult {
	if limit <= 0 {
		limit = 20
	}
	key := "usages:" + Fingerprint(symbol, nil, limit)
	hits, status := lookup(g, CapabilityFindUsages, key, func() ([]GrepHit, error) {
		return g.grep(ctx, symbol, limit)
	})
	return GrepResult{Status: status, Hits: hits}
}

// FindCallers greps the repository for call sites of symbol.
func (g *Gateway) FindCallers(ctx context.Context, symbol string, limit int) GrepResult {
	if limit <= 0 {
		limit = 20
	}
	key := "callers:" + Fingerprint(symbol+"(", nil, limit)
	hits, status := lookup(g, CapabilityFindCallers, key, func() ([]GrepHit, error) {
		return g.grep(ctx, symbol+"(", limit)
	})
	return GrepResult{Status: status, Hits: hits}
}

func (g *Gateway) readFiles(paths []string, limit int) ([]FileContent, error) {
	var files []FileContent
	for _, rel := range paths {
		if len(files) >= limit {
			break
		}
		path := filepath.Join(g.root, filepath.FromSlash(rel))
		if !withinRoot(g.root, path) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			g.logger.Debug("skipping unreadable related file", "file", rel, "error", err)
			continue
		}
		files = append(files, FileContent{Path: rel, Content: string(data)})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("none of %d related files could be read", len(paths))
	}
	return files, nil
}

// withinRoot reports whether path stays inside root. A plain prefix check
// would also admit sibling directories like root+"2".
func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// grepSkipDirs are never descended into during usage scans.
var grepSkipDirs = map[string]bool{
	"node_modules": true, ".git": true, "dist": true, "build": true,
	"vendor": true, "coverage": true, ".next": true, "target": true,
}

// grep scans repository source files for needle, line by line, stopping at
// limit matches. It is a textual approximation of a usages query.
func (g *Gateway) grep(ctx context.Context, needle string, limit int) ([]GrepHit, error) {
	if strings.TrimSpace(needle) == "" {
		return nil, fmt.Errorf("empty search symbol")
	}

	var hits []GrepHit
	err := filepath.WalkDir(g.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if grepSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(hits) >= limit {
			return filepath.SkipAll
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(g.root, path)
		if relErr != nil {
			rel = path
		}
		for i, line := range strings.Split(string(data), "\n") {
			if strings.Contains(line, needle) {
				hits = append(hits, GrepHit{
					FilePath: filepath.ToSlash(rel),
					Line:     i + 1,
					Text:     strings.TrimSpace(line),
				})
				if len(hits) >= limit {
					return filepath.SkipAll
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hits, nil
}
