package pipeline

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/driftaldev/redline/internal/core"
)

// roleView selects which slice of the shared EnrichedContext a role sees and
// how its semantic searches are phrased. The context itself is built once and
// never mutated; views only read it.
type roleView struct {
	upstream   bool
	downstream bool
	tests      bool

	// maxChars bounds the rendered summary so role prompts stay within the
	// model's context window.
	maxChars int

	queryPrefix string
}

// roleRegistry statically maps each role to its view. Adding a role means
// adding an entry here; roles are never resolved by name at call time.
var roleRegistry = map[core.Role]roleView{
	core.RoleSecurity: {
		upstream:    true,
		downstream:  true,
		maxChars:    4000,
		queryPrefix: "input validation authentication and trust boundaries of",
	},
	core.RolePerformance: {
		upstream:    true,
		downstream:  false,
		maxChars:    3000,
		queryPrefix: "hot paths allocations and loops around",
	},
	core.RoleLogic: {
		upstream:    true,
		tests:       true,
		maxChars:    4000,
		queryPrefix: "expected behavior and edge cases of",
	},
}

func (v roleView) searchQuery(path string) string {
	return v.queryPrefix + " " + filepath.Base(path)
}

// summarize renders the role's slice of the context as a compact text block.
func (v roleView) summarize(ec core.EnrichedContext) string {
	var b strings.Builder

	if v.upstream && len(ec.Upstream) > 0 {
		b.WriteString("Depends on:\n")
		for _, node := range ec.Upstream {
			writeNode(&b, node)
		}
	}
	if v.downstream && len(ec.Downstream) > 0 {
		b.WriteString("Used by:\n")
		for _, node := range ec.Downstream {
			writeNode(&b, node)
		}
	}
	if v.tests && len(ec.Tests) > 0 {
		b.WriteString("Covered by tests:\n")
		for _, tf := range ec.Tests {
			b.WriteString("- ")
			b.WriteString(tf.FilePath)
			if len(tf.TestNames) > 0 {
				b.WriteString(" (")
				b.WriteString(strings.Join(capList(tf.TestNames, 5), ", "))
				b.WriteString(")")
			}
			b.WriteByte('\n')
		}
	}

	summary := b.String()
	if v.maxChars > 0 && len(summary) > v.maxChars {
		cut := v.maxChars
		// Back off to a rune boundary so the cut never leaves a partial
		// multi-byte sequence in the prompt.
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut] + "\n[context truncated]"
	}
	return summary
}

func writeNode(b *strings.Builder, node core.DependencyNode) {
	b.WriteString("- ")
	b.WriteString(node.FilePath)
	if len(node.Exports) > 0 {
		b.WriteString(" exports ")
		b.WriteString(strings.Join(capList(node.Exports, 8), ", "))
	}
	b.WriteByte('\n')
}

func capList(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	return items[:max]
}

var extLanguages = map[string]string{
	".go": "Go", ".ts": "TypeScript", ".tsx": "TypeScript", ".js": "JavaScript",
	".jsx": "JavaScript", ".py": "Python", ".java": "Java", ".rb": "Ruby",
	".rs": "Rust", ".c": "C", ".h": "C", ".cc": "C++", ".cpp": "C++",
	".hpp": "C++", ".cs": "C#", ".php": "PHP", ".kt": "Kotlin",
	".swift": "Swift", ".scala": "Scala", ".sh": "Shell", ".sql": "SQL",
}

func languageForPath(path string) string {
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "unknown"
}
