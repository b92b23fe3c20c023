package classify

import (
	"regexp"

	"github.com/driftaldev/redline/internal/diff"
)

var controlFlowPattern = regexp.MustCompile(
	`\b(if|else|for|while|switch|case|catch|try|select|match|elif)\b|&&|\|\|`)

// structuralComplexity estimates how branchy a file's changed lines are.
// Diff fragments are usually incomplete snippets, so this counts control-flow
// tokens and brace nesting rather than parsing. When the fragment carries no
// structural signal at all, a line-count proxy stands in.
func (c *Classifier) structuralComplexity(f *diff.File) int {
	changed := f.ChangedLines()
	if len(changed) == 0 {
		return 0
	}
	if !IsSourceFile(f.Path) {
		return sizeProxy(len(changed))
	}

	branches := 0
	depth, maxDepth := 0, 0
	sawStructure := false

	for _, line := range changed {
		matches := controlFlowPattern.FindAllString(line.Content, -1)
		if len(matches) > 0 {
			branches += len(matches)
			sawStructure = true
		}
		for _, r := range line.Content {
			switch r {
			case '{':
				depth++
				sawStructure = true
				if depth > maxDepth {
					maxDepth = depth
				}
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}

	if !sawStructure {
		proxy := sizeProxy(len(changed))
		if c.logger != nil {
			c.logger.Debug("structural analysis found no signal, using line proxy",
				"file", f.Path, "changed_lines", len(changed), "proxy", proxy)
		}
		return proxy
	}

	return min((branches+2*maxDepth)/5, 10)
}

func sizeProxy(changedLines int) int {
	return min(changedLines/20, 10)
}
