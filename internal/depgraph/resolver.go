// Package depgraph builds the per-file dependency context a review runs
// against: which files the changed file imports, which files import it, and
// which tests cover it. Extraction is lexical and traversal is best effort;
// a failed read or an unresolvable import drops that branch, never the run.
package depgraph

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/driftaldev/redline/internal/core"
)

// resolveExtensions are tried, in order, when an import specifier carries no
// usable extension.
var resolveExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".go", ".py", ".rb", ".java", ".rs",
}

// skipDirs are never walked when indexing the repository.
var skipDirs = map[string]bool{
	"node_modules": true, ".git": true, "dist": true, "build": true,
	"vendor": true, "coverage": true, ".next": true, "target": true,
}

// Resolver resolves dependency context under one repository root. File
// contents are cached for the resolver's lifetime, so traversals that meet
// the same file twice read it once.
type Resolver struct {
	root      string
	extractor Extractor
	logger    *slog.Logger

	mu       sync.RWMutex
	contents map[string]string

	indexOnce sync.Once
	basenames map[string][]string
}

// NewResolver creates a Resolver rooted at repoRoot.
func NewResolver(repoRoot string, logger *slog.Logger) *Resolver {
	return &Resolver{
		root:      repoRoot,
		extractor: NewLexicalExtractor(),
		logger:    logger,
		contents:  make(map[string]string),
	}
}

// WithExtractor swaps the default lexical extractor, for tests or for a
// parser-backed implementation.
func (r *Resolver) WithExtractor(e Extractor) *Resolver {
	r.extractor = e
	return r
}

// ResolveUpstream walks the import graph out of file, breadth first, up to
// maxDepth levels. The starting file itself is depth 0 and excluded from the
// result. Each resolved file appears at most once regardless of how many
// paths lead to it.
func (r *Resolver) ResolveUpstream(ctx context.Context, file string, maxDepth int, includeExternal bool) []core.DependencyNode {
	start := r.abs(file)
	visited := map[string]bool{start: true}
	var nodes []core.DependencyNode

	frontier := []string{start}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, current := range frontier {
			if ctx.Err() != nil {
				return nodes
			}

			content, err := r.readFile(current)
			if err != nil {
				r.logger.Debug("skipping unreadable file in traversal", "file", current, "error", err)
				continue
			}

			for _, spec := range r.extractor.Imports(content, current) {
				resolved, ok := r.resolveSpecifier(current, spec)
				if !ok {
					if includeExternal && !isRelativeSpecifier(spec) {
						external := core.DependencyNode{
							FilePath:     spec,
							Depth:        depth,
							Relationship: core.RelationshipUpstream,
						}
						if !visited[spec] {
							visited[spec] = true
							nodes = append(nodes, external)
						}
					}
					continue
				}
				if visited[resolved] {
					continue
				}
				visited[resolved] = true
				nodes = append(nodes, r.buildNode(resolved, depth, core.RelationshipUpstream))
				next = append(next, resolved)
			}
		}
		frontier = next
	}

	return nodes
}

// ResolveDownstream approximates the reverse lookup: only files in the same
// and parent directory of the target are scanned. Full-repository reverse
// indexing is intentionally not attempted; this under-reports downstream
// usage in large trees and that is an accepted tradeoff.
func (r *Resolver) ResolveDownstream(ctx context.Context, file string, maxDepth int) []core.DependencyNode {
	start := r.abs(file)
	visited := map[string]bool{start: true}
	var nodes []core.DependencyNode

	frontier := []string{start}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, target := range frontier {
			for _, candidate := range r.neighborFiles(target) {
				if ctx.Err() != nil {
					return nodes
				}
				if visited[candidate] {
					continue
				}
				if !r.importsTarget(candidate, target) {
					continue
				}
				visited[candidate] = true
				nodes = append(nodes, r.buildNode(candidate, depth, core.RelationshipDownstream))
				next = append(next, candidate)
			}
		}
		frontier = next
	}

	return nodes
}

// importsTarget reports whether candidate has an import resolving to target.
func (r *Resolver) importsTarget(candidate, target string) bool {
	content, err := r.readFile(candidate)
	if err != nil {
		return false
	}
	for _, spec := range r.extractor.Imports(content, candidate) {
		if resolved, ok := r.resolveSpecifier(candidate, spec); ok && resolved == target {
			return true
		}
	}
	return false
}

// neighborFiles lists source files in the target's own and parent directory.
func (r *Resolver) neighborFiles(target string) []string {
	dir := filepath.Dir(target)
	dirs := []string{dir}
	if parent := filepath.Dir(dir); parent != dir && strings.HasPrefix(parent, r.root) {
		dirs = append(dirs, parent)
	}

	var files []string
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			r.logger.Debug("cannot scan directory for downstream candidates", "dir", d, "error", err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(d, entry.Name())
			if path != target && hasResolvableExtension(path) {
				files = append(files, path)
			}
		}
	}
	return files
}

func (r *Resolver) buildNode(path string, depth int, rel core.Relationship) core.DependencyNode {
	node := core.DependencyNode{
		FilePath:     r.rel(path),
		Depth:        depth,
		Relationship: rel,
	}
	if content, err := r.readFile(path); err == nil {
		node.Imports = r.extractor.Imports(content, path)
		node.Exports = r.extractor.Exports(content, path)
	}
	return node
}

// resolveSpecifier maps an import specifier to a concrete file. Relative
// specifiers resolve against the importing file; anything else falls back to
// a same-basename lookup across the repository.
func (r *Resolver) resolveSpecifier(fromFile, spec string) (string, bool) {
	if spec == "" {
		return "", false
	}

	if isRelativeSpecifier(spec) {
		base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(spec))
		if resolved, ok := r.tryCandidates(base); ok {
			return resolved, true
		}
		return "", false
	}

	// Bare or aliased specifier: try the last path element by basename.
	name := spec
	if idx := strings.LastIndex(spec, "/"); idx >= 0 {
		name = spec[idx+1:]
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" {
		return "", false
	}

	r.buildBasenameIndex()
	r.mu.RLock()
	candidates := r.basenames[strings.ToLower(name)]
	r.mu.RUnlock()
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}

// tryCandidates probes base with each supported extension, then as a
// directory with an index file.
func (r *Resolver) tryCandidates(base string) (string, bool) {
	if hasResolvableExtension(base) && r.fileExists(base) {
		return base, true
	}
	for _, ext := range resolveExtensions {
		if candidate := base + ext; r.fileExists(candidate) {
			return candidate, true
		}
	}
	for _, ext := range resolveExtensions {
		if candidate := filepath.Join(base, "index"+ext); r.fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// buildBasenameIndex walks the repository once per resolver instance and
// groups source files by lower-cased basename.
func (r *Resolver) buildBasenameIndex() {
	r.indexOnce.Do(func() {
		index := make(map[string][]string)
		err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasResolvableExtension(path) {
				return nil
			}
			name := strings.ToLower(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))
			index[name] = append(index[name], path)
			return nil
		})
		if err != nil {
			r.logger.Debug("basename index walk ended early", "error", err)
		}
		r.mu.Lock()
		r.basenames = index
		r.mu.Unlock()
	})
}

// readFile returns file content through the per-instance cache.
func (r *Resolver) readFile(path string) (string, error) {
	r.mu.RLock()
	content, ok := r.contents[path]
	r.mu.RUnlock()
	if ok {
		return content, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.contents[path] = string(data)
	r.mu.Unlock()
	return string(data), nil
}

func (r *Resolver) fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Resolver) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.root, path)
}

func (r *Resolver) rel(path string) string {
	if rel, err := filepath.Rel(r.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func isRelativeSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, ".\\") || spec == "." || spec == ".."
}

func hasResolvableExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range resolveExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
