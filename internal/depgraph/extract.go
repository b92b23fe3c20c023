package depgraph

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Extractor pulls import specifiers and exported symbol names out of source
// text. The default implementation is lexical; a real parser can be swapped
// in without touching the traversal.
type Extractor interface {
	Imports(content, path string) []string
	Exports(content, path string) []string
}

// lexicalExtractor matches import/export forms with regular expressions.
// It will under- and over-resolve around re-exports, barrel files and
// computed paths; callers tolerate partial graphs.
type lexicalExtractor struct{}

// NewLexicalExtractor returns the regex-based Extractor used by default.
func NewLexicalExtractor() Extractor {
	return lexicalExtractor{}
}

var (
	esImportPattern      = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w*{}\s,$]+\s+from\s+)?['"]([^'"]+)['"]`)
	esReexportPattern    = regexp.MustCompile(`(?m)^\s*export\s+(?:\*|[\w{}\s,$]+)\s+from\s+['"]([^'"]+)['"]`)
	requirePattern       = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	dynamicImportPattern = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
	goImportPattern      = regexp.MustCompile(`(?m)^\s*import\s+(?:\w+\s+)?"([^"]+)"`)
	pyImportPattern      = regexp.MustCompile(`(?m)^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`)
)

func (lexicalExtractor) Imports(content, path string) []string {
	seen := make(map[string]bool)
	var specifiers []string
	add := func(spec string) {
		if spec != "" && !seen[spec] {
			seen[spec] = true
			specifiers = append(specifiers, spec)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		for _, m := range goImportPattern.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
	case ".py":
		for _, m := range pyImportPattern.FindAllStringSubmatch(content, -1) {
			if m[1] != "" {
				add(m[1])
			} else {
				add(m[2])
			}
		}
	default:
		for _, pattern := range []*regexp.Regexp{
			esImportPattern, esReexportPattern, requirePattern, dynamicImportPattern,
		} {
			for _, m := range pattern.FindAllStringSubmatch(content, -1) {
				add(m[1])
			}
		}
	}
	return specifiers
}

var (
	esExportPattern = regexp.MustCompile(
		`(?m)^\s*export\s+(?:default\s+)?(?:async\s+)?(?:function\s*\*?|class|const|let|var|interface|type|enum)\s+([A-Za-z_$][\w$]*)`)
	esExportListPattern = regexp.MustCompile(`(?m)^\s*export\s*{([^}]+)}`)
	goExportPattern     = regexp.MustCompile(`(?m)^\s*(?:func|type)\s+(?:\([^)]*\)\s*)?([A-Z]\w*)`)
	pyDefPattern        = regexp.MustCompile(`(?m)^(?:def|class)\s+([A-Za-z_]\w*)`)
)

func (lexicalExtractor) Exports(content, path string) []string {
	seen := make(map[string]bool)
	var symbols []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name != "" && !seen[name] {
			seen[name] = true
			symbols = append(symbols, name)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		for _, m := range goExportPattern.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
	case ".py":
		for _, m := range pyDefPattern.FindAllStringSubmatch(content, -1) {
			if !strings.HasPrefix(m[1], "_") {
				add(m[1])
			}
		}
	default:
		for _, m := range esExportPattern.FindAllStringSubmatch(content, -1) {
			add(m[1])
		}
		for _, m := range esExportListPattern.FindAllStringSubmatch(content, -1) {
			for _, entry := range strings.Split(m[1], ",") {
				// "name as alias" exports the alias.
				parts := strings.Fields(entry)
				if len(parts) == 3 && parts[1] == "as" {
					add(parts[2])
				} else if len(parts) > 0 {
					add(parts[0])
				}
			}
		}
	}
	return symbols
}
