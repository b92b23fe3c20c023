package depgraph

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/driftaldev/redline/internal/core"
)

var (
	jsTestBlockPattern = regexp.MustCompile(`(?m)\b(?:it|test|describe)(?:\.(?:each|only|skip)[^(]*)?\(\s*['"` + "`" + `](.+?)['"` + "`" + `]`)
	goTestFuncPattern  = regexp.MustCompile(`(?m)^func\s+(Test\w+|Benchmark\w+)\s*\(`)
	pyTestFuncPattern  = regexp.MustCompile(`(?m)^\s*def\s+(test_\w+)\s*\(`)
)

// FindRelatedTests discovers conventionally named test files for a source
// file: .test/.spec siblings, _test.go siblings, and matches inside a
// __tests__ subdirectory. Test block names are extracted lexically.
func (r *Resolver) FindRelatedTests(ctx context.Context, file string) []core.TestFile {
	source := r.abs(file)
	dir := filepath.Dir(source)
	ext := filepath.Ext(source)
	stem := strings.TrimSuffix(filepath.Base(source), ext)

	var candidates []string
	for _, infix := range []string{".test", ".spec"} {
		for _, tryExt := range testCandidateExtensions(ext) {
			candidates = append(candidates, filepath.Join(dir, stem+infix+tryExt))
		}
	}
	candidates = append(candidates, filepath.Join(dir, stem+"_test.go"))

	testsDir := filepath.Join(dir, "__tests__")
	if entries, err := os.ReadDir(testsDir); err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if strings.HasPrefix(name, stem+".") || strings.HasPrefix(name, stem+"_") {
				candidates = append(candidates, filepath.Join(testsDir, name))
			}
		}
	}

	var tests []core.TestFile
	seen := make(map[string]bool)
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return tests
		}
		if seen[candidate] || !r.fileExists(candidate) {
			continue
		}
		seen[candidate] = true

		testFile := core.TestFile{
			FilePath:    r.rel(candidate),
			RelatedFile: r.rel(source),
		}
		if content, err := r.readFile(candidate); err == nil {
			testFile.TestNames = extractTestNames(content, candidate)
		}
		tests = append(tests, testFile)
	}
	return tests
}

// testCandidateExtensions orders the extensions to try for a test sibling,
// preferring the source file's own extension.
func testCandidateExtensions(sourceExt string) []string {
	ordered := []string{sourceExt}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
		if ext != sourceExt {
			ordered = append(ordered, ext)
		}
	}
	return ordered
}

func extractTestNames(content, path string) []string {
	var pattern *regexp.Regexp
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		pattern = goTestFuncPattern
	case ".py":
		pattern = pyTestFuncPattern
	default:
		pattern = jsTestBlockPattern
	}

	seen := make(map[string]bool)
	var names []string
	for _, m := range pattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
