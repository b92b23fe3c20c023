package classify

import (
	"path/filepath"
	"strings"
)

// sourceExtensions is the set of extensions the pipeline treats as reviewable
// source code.
var sourceExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".go": true, ".py": true, ".rb": true, ".java": true, ".kt": true, ".rs": true,
	".c": true, ".h": true, ".cc": true, ".cpp": true, ".hpp": true, ".cs": true,
	".php": true, ".swift": true, ".scala": true, ".vue": true, ".svelte": true,
}

var docExtensions = map[string]bool{
	".md": true, ".mdx": true, ".rst": true, ".txt": true, ".adoc": true,
}

var manifestNames = map[string]bool{
	"package.json": true, "package-lock.json": true, "yarn.lock": true,
	"pnpm-lock.yaml": true, "go.mod": true, "go.sum": true,
	"cargo.toml": true, "cargo.lock": true, "requirements.txt": true,
	"pipfile": true, "pipfile.lock": true, "pyproject.toml": true,
	"pom.xml": true, "build.gradle": true, "gemfile": true, "gemfile.lock": true,
	"composer.json": true, "composer.lock": true, "makefile": true,
	"dockerfile": true, "docker-compose.yml": true, "docker-compose.yaml": true,
}

// IsSourceFile reports whether the path has a reviewable source extension.
func IsSourceFile(path string) bool {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsTestPath reports whether the path names a test file by convention:
// test/spec infixes in the file name or a tests directory in the path.
func IsTestPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") ||
		strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), "_test") {
		return true
	}
	normalized := strings.ToLower(filepath.ToSlash(path))
	for _, dir := range []string{"tests/", "test/", "__tests__/", "spec/"} {
		if strings.HasPrefix(normalized, dir) || strings.Contains(normalized, "/"+dir) {
			return true
		}
	}
	return false
}

// IsDocFile reports whether the path is documentation.
func IsDocFile(path string) bool {
	if docExtensions[strings.ToLower(filepath.Ext(path))] {
		return true
	}
	normalized := strings.ToLower(filepath.ToSlash(path))
	return strings.HasPrefix(normalized, "docs/") || strings.Contains(normalized, "/docs/")
}

// IsManifestFile reports whether the path is a build or dependency manifest.
func IsManifestFile(path string) bool {
	return manifestNames[strings.ToLower(filepath.Base(path))]
}
