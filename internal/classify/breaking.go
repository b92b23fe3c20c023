package classify

import (
	"regexp"
	"strings"

	"github.com/driftaldev/redline/internal/diff"
)

var exportPrefixes = []string{
	"export ", "export default ", "module.exports", "pub ", "pub fn ", "public ",
}

// Signature shapes across the supported languages. Group 1 captures the name.
var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bfunction\s+([A-Za-z_$][\w$]*)\s*\(`),
	regexp.MustCompile(`\b(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?(?:\(|function)`),
	regexp.MustCompile(`\bfunc\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*\(`),
	regexp.MustCompile(`\bdef\s+([A-Za-z_]\w*)\s*\(`),
	regexp.MustCompile(`^\s*(?:public|protected)?\s*(?:static\s+)?(?:async\s+)?([A-Za-z_$][\w$]*)\s*\([^)]*\)\s*[:{]`),
}

// detectBreakingChange applies three escalating checks: deleted files,
// removed export-keyword lines, then removed-vs-added signature comparison.
// The signature comparison is lexical; when it extracts nothing from a
// fragment the file simply contributes no breaking signal.
func (c *Classifier) detectBreakingChange(files []diff.File) bool {
	for i := range files {
		if files[i].Status == diff.StatusDeleted {
			return true
		}
	}

	for i := range files {
		f := &files[i]
		for _, chunk := range f.Chunks {
			for _, line := range chunk.Lines {
				if line.Op != diff.OpRemoved {
					continue
				}
				trimmed := strings.TrimSpace(line.Content)
				for _, prefix := range exportPrefixes {
					if strings.HasPrefix(trimmed, prefix) {
						return true
					}
				}
			}
		}
	}

	for i := range files {
		f := &files[i]
		if !IsSourceFile(f.Path) {
			continue
		}
		if c.removedSignatureWithoutReplacement(f) {
			return true
		}
	}
	return false
}

// removedSignatureWithoutReplacement reports whether a function-like
// signature disappears from the file without an equivalent in the added code.
func (c *Classifier) removedSignatureWithoutReplacement(f *diff.File) bool {
	removedNames := extractSignatureNames(f.RemovedContent())
	if len(removedNames) == 0 {
		return false
	}
	addedNames := extractSignatureNames(f.AddedContent())

	for name := range removedNames {
		if isPrivateName(name) {
			continue
		}
		if !addedNames[name] {
			if c.logger != nil {
				c.logger.Debug("removed signature has no replacement",
					"file", f.Path, "name", name)
			}
			return true
		}
	}
	return false
}

func extractSignatureNames(content string) map[string]bool {
	names := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		for _, pattern := range signaturePatterns {
			if m := pattern.FindStringSubmatch(line); m != nil {
				name := m[1]
				if isSignatureKeyword(name) {
					continue
				}
				names[name] = true
				break
			}
		}
	}
	return names
}

// isSignatureKeyword filters control-flow words the loose method pattern can
// mistake for a method name.
func isSignatureKeyword(name string) bool {
	switch strings.ToLower(name) {
	case "if", "for", "while", "switch", "catch", "return", "else", "do", "new":
		return true
	}
	return false
}

// isPrivateName treats underscore- and hash-prefixed identifiers as
// non-public, exempting them from the breaking-change signal.
func isPrivateName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, "#")
}
