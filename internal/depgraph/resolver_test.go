package depgraph

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/driftaldev/redline/internal/core"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func nodePaths(nodes []core.DependencyNode) []string {
	paths := make([]string, 0, len(nodes))
	for _, n := range nodes {
		paths = append(paths, n.FilePath)
	}
	return paths
}

func containsPath(nodes []core.DependencyNode, path string) bool {
	for _, n := range nodes {
		if n.FilePath == path {
			return true
		}
	}
	return false
}

func TestResolveUpstream(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", `import { b } from './b';`)
	writeFile(t, root, "src/b.ts", `import { c } from './c';
export const b = 1;`)
	writeFile(t, root, "src/c.ts", `export const c = 2;`)

	r := NewResolver(root, slog.Default())
	nodes := r.ResolveUpstream(context.Background(), "src/a.ts", 3, false)

	if len(nodes) != 2 {
		t.Fatalf("expected 2 upstream nodes, got %d: %v", len(nodes), nodePaths(nodes))
	}
	if nodes[0].FilePath != "src/b.ts" || nodes[0].Depth != 1 {
		t.Errorf("unexpected first node: %+v", nodes[0])
	}
	if nodes[1].FilePath != "src/c.ts" || nodes[1].Depth != 2 {
		t.Errorf("unexpected second node: %+v", nodes[1])
	}
	for _, n := range nodes {
		if n.Relationship != core.RelationshipUpstream {
			t.Errorf("node %s has relationship %q", n.FilePath, n.Relationship)
		}
	}
	if len(nodes[0].Exports) == 0 {
		t.Errorf("expected exports extracted for %s", nodes[0].FilePath)
	}
}

func TestResolveUpstream_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", `import './b';`)
	writeFile(t, root, "b.ts", `import './c';`)
	writeFile(t, root, "c.ts", `export const c = 1;`)

	r := NewResolver(root, slog.Default())
	nodes := r.ResolveUpstream(context.Background(), "a.ts", 1, false)

	if len(nodes) != 1 || nodes[0].FilePath != "b.ts" {
		t.Errorf("maxDepth=1 should stop after b.ts, got %v", nodePaths(nodes))
	}
}

func TestResolveUpstream_CycleSafety(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x.ts", `import './y';`)
	writeFile(t, root, "y.ts", `import './z';`)
	writeFile(t, root, "z.ts", `import './x';`)

	r := NewResolver(root, slog.Default())
	nodes := r.ResolveUpstream(context.Background(), "x.ts", 10, false)

	if len(nodes) != 2 {
		t.Fatalf("cycle should yield y and z exactly once, got %v", nodePaths(nodes))
	}
	if containsPath(nodes, "x.ts") {
		t.Error("starting file must not appear in its own upstream set")
	}
}

func TestResolveUpstream_MissingImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.ts", `import './gone';
import './real';`)
	writeFile(t, root, "real.ts", `export const real = 1;`)

	r := NewResolver(root, slog.Default())
	nodes := r.ResolveUpstream(context.Background(), "main.ts", 2, false)

	if len(nodes) != 1 || nodes[0].FilePath != "real.ts" {
		t.Errorf("unresolvable import should be dropped silently, got %v", nodePaths(nodes))
	}
}

func TestResolveUpstream_ExternalImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.ts", `import React from 'react';
import { helper } from './helper';`)
	writeFile(t, root, "helper.ts", `export const helper = 1;`)

	r := NewResolver(root, slog.Default())

	without := r.ResolveUpstream(context.Background(), "app.ts", 1, false)
	if containsPath(without, "react") {
		t.Errorf("external import included despite includeExternal=false: %v", nodePaths(without))
	}

	with := NewResolver(root, slog.Default()).ResolveUpstream(context.Background(), "app.ts", 1, true)
	if !containsPath(with, "react") {
		t.Errorf("external import missing despite includeExternal=true: %v", nodePaths(with))
	}
}

func TestResolveUpstream_IndexFileAndBareSpecifier(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", `import { w } from './widgets';
import { fmt } from 'lib/format';`)
	writeFile(t, root, "src/widgets/index.ts", `export const w = 1;`)
	writeFile(t, root, "src/lib/format.ts", `export const fmt = 1;`)

	r := NewResolver(root, slog.Default())
	nodes := r.ResolveUpstream(context.Background(), "src/app.ts", 1, false)

	if !containsPath(nodes, "src/widgets/index.ts") {
		t.Errorf("directory import should resolve to index file, got %v", nodePaths(nodes))
	}
	if !containsPath(nodes, "src/lib/format.ts") {
		t.Errorf("bare specifier should resolve by basename, got %v", nodePaths(nodes))
	}
}

func TestResolveDownstream(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/core/target.ts", `export const target = 1;`)
	writeFile(t, root, "src/core/sibling.ts", `import { target } from './target';`)
	writeFile(t, root, "src/parent.ts", `import { target } from './core/target';`)
	writeFile(t, root, "src/far/away.ts", `import { target } from '../core/target';`)
	writeFile(t, root, "src/core/unrelated.ts", `export const nope = 1;`)

	r := NewResolver(root, slog.Default())
	nodes := r.ResolveDownstream(context.Background(), "src/core/target.ts", 1)

	if !containsPath(nodes, "src/core/sibling.ts") {
		t.Errorf("same-directory importer not found: %v", nodePaths(nodes))
	}
	if !containsPath(nodes, "src/parent.ts") {
		t.Errorf("parent-directory importer not found: %v", nodePaths(nodes))
	}
	// The scan is deliberately limited to the same and parent directory.
	if containsPath(nodes, "src/far/away.ts") {
		t.Errorf("cousin-directory importer should not be scanned: %v", nodePaths(nodes))
	}
	if containsPath(nodes, "src/core/unrelated.ts") {
		t.Errorf("non-importing neighbor included: %v", nodePaths(nodes))
	}
	for _, n := range nodes {
		if n.Relationship != core.RelationshipDownstream {
			t.Errorf("node %s has relationship %q", n.FilePath, n.Relationship)
		}
	}
}

func TestFindRelatedTests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/auth.ts", `export const login = 1;`)
	writeFile(t, root, "src/auth.test.ts", `describe('auth', () => {
  it('logs in a user', () => {});
  it('rejects bad tokens', () => {});
});`)
	writeFile(t, root, "src/__tests__/auth.integration.ts", `test('auth end to end', () => {});`)

	r := NewResolver(root, slog.Default())
	tests := r.FindRelatedTests(context.Background(), "src/auth.ts")

	if len(tests) != 2 {
		t.Fatalf("expected 2 related test files, got %d", len(tests))
	}
	sibling := tests[0]
	if sibling.FilePath != "src/auth.test.ts" || sibling.RelatedFile != "src/auth.ts" {
		t.Errorf("unexpected sibling test: %+v", sibling)
	}
	wantNames := map[string]bool{"auth": true, "logs in a user": true, "rejects bad tokens": true}
	for _, name := range sibling.TestNames {
		if !wantNames[name] {
			t.Errorf("unexpected test name %q", name)
		}
	}
	if len(sibling.TestNames) != 3 {
		t.Errorf("expected 3 test names, got %v", sibling.TestNames)
	}
}

func TestFindRelatedTests_GoSibling(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/sum.go", `package pkg`)
	writeFile(t, root, "pkg/sum_test.go", `package pkg

func TestSum(t *testing.T) {}
func TestSumOverflow(t *testing.T) {}`)

	r := NewResolver(root, slog.Default())
	tests := r.FindRelatedTests(context.Background(), "pkg/sum.go")

	if len(tests) != 1 {
		t.Fatalf("expected 1 related test file, got %d", len(tests))
	}
	if len(tests[0].TestNames) != 2 {
		t.Errorf("expected 2 Go test funcs, got %v", tests[0].TestNames)
	}
}

func TestResolver_ContentCache(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.ts", `import './b';`)
	writeFile(t, root, "b.ts", `export const b = 1;`)

	r := NewResolver(root, slog.Default())
	first := r.ResolveUpstream(context.Background(), "a.ts", 1, false)
	if len(first) != 1 {
		t.Fatalf("setup traversal failed: %v", nodePaths(first))
	}

	// Rewriting the file on disk must not change resolver output: contents
	// are cached for the lifetime of the instance.
	if err := os.WriteFile(path, []byte(`// no imports anymore`), 0o644); err != nil {
		t.Fatal(err)
	}
	second := r.ResolveUpstream(context.Background(), "a.ts", 1, false)
	if len(second) != 1 {
		t.Errorf("expected cached content to drive traversal, got %v", nodePaths(second))
	}

	fresh := NewResolver(root, slog.Default()).ResolveUpstream(context.Background(), "a.ts", 1, false)
	if len(fresh) != 0 {
		t.Errorf("fresh resolver should see the new content, got %v", nodePaths(fresh))
	}
}

func TestEnrich_EmptyContextOnFailure(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root, slog.Default())

	enriched := r.Enrich(context.Background(), "does/not/exist.ts", 2, false)
	if enriched.FilePath != "does/not/exist.ts" {
		t.Errorf("unexpected file path: %q", enriched.FilePath)
	}
	if len(enriched.Upstream) != 0 || len(enriched.Downstream) != 0 || len(enriched.Tests) != 0 {
		t.Errorf("missing file should produce an empty context, got %+v", enriched)
	}
}
