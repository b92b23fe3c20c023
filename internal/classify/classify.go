// Package classify turns a parsed diff into a single ChangeAnalysis: what
// kind of change it is, how complex, how risky, and which modules it touches.
// Classification is pure and deterministic; malformed code fragments degrade
// to coarser heuristics instead of failing.
package classify

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/diff"
)

// Classifier analyzes a whole diff. It performs no I/O.
type Classifier struct {
	logger *slog.Logger
}

// New creates a Classifier.
func New(logger *slog.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify produces the one ChangeAnalysis for a review run.
func (c *Classifier) Classify(files []diff.File) core.ChangeAnalysis {
	added, removed := diff.Totals(files)

	analysis := core.ChangeAnalysis{
		FilesChanged:    len(files),
		LinesAdded:      added,
		LinesRemoved:    removed,
		HasTestCoverage: anyFile(files, func(f *diff.File) bool { return IsTestPath(f.Path) }),
		AffectedModules: affectedModules(files),
	}

	analysis.IsBreakingChange = c.detectBreakingChange(files)
	analysis.ChangeType = c.changeType(files, added, removed)

	score := c.complexityScore(files, added+removed, analysis.IsBreakingChange)
	analysis.Complexity = complexityTier(score)
	analysis.RiskScore = riskScore(analysis.Complexity, files, analysis.IsBreakingChange, analysis.HasTestCoverage)

	return analysis
}

func (c *Classifier) changeType(files []diff.File, added, removed int) core.ChangeType {
	if len(files) == 0 {
		return core.ChangeTypeFeature
	}

	switch {
	case allFiles(files, func(f *diff.File) bool { return IsTestPath(f.Path) }):
		return core.ChangeTypeTest
	case allFiles(files, func(f *diff.File) bool { return IsDocFile(f.Path) }):
		return core.ChangeTypeDocs
	case allFiles(files, func(f *diff.File) bool { return IsManifestFile(f.Path) }):
		return core.ChangeTypeChore
	}

	hasNewFiles := anyFile(files, func(f *diff.File) bool { return f.Status == diff.StatusAdded })
	total := added + removed

	switch {
	case hasNewFiles && added > 2*removed:
		return core.ChangeTypeFeature
	case total > 100 && abs(added-removed) < 50:
		return core.ChangeTypeRefactor
	case total < 50 && !hasNewFiles:
		return core.ChangeTypeBugfix
	default:
		return core.ChangeTypeFeature
	}
}

func (c *Classifier) complexityScore(files []diff.File, totalLines int, breaking bool) int {
	score := 5 * len(files)
	score += min(totalLines/10, 50)

	structural := 0
	for i := range files {
		structural += c.structuralComplexity(&files[i])
	}
	score += 10 * structural

	if anyFile(files, func(f *diff.File) bool { return touchesCriticalPath(f.Path) }) {
		score += 30
	}
	if breaking {
		score += 40
	}
	return score
}

func complexityTier(score int) core.Complexity {
	switch {
	case score < 20:
		return core.ComplexityTrivial
	case score < 50:
		return core.ComplexityLow
	case score < 100:
		return core.ComplexityMedium
	case score < 200:
		return core.ComplexityHigh
	default:
		return core.ComplexityCritical
	}
}

var riskBase = map[core.Complexity]int{
	core.ComplexityTrivial:  5,
	core.ComplexityLow:      15,
	core.ComplexityMedium:   30,
	core.ComplexityHigh:     50,
	core.ComplexityCritical: 70,
}

func riskScore(tier core.Complexity, files []diff.File, breaking, hasTests bool) int {
	score := riskBase[tier]
	if anyFile(files, func(f *diff.File) bool { return touchesCriticalPath(f.Path) }) {
		score += 20
	}
	if breaking {
		score += 25
	}
	if !hasTests {
		score += 15
	}
	return min(score, 100)
}

var criticalPathKeywords = []string{
	"auth", "login", "password", "token", "secret", "crypto", "security",
	"payment", "billing", "checkout", "database", "migration", "session", "admin",
}

func touchesCriticalPath(path string) bool {
	lower := strings.ToLower(path)
	for _, kw := range criticalPathKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var moduleKeywordTags = []struct {
	keyword string
	tag     string
}{
	{"auth", "authentication"},
	{"login", "authentication"},
	{"payment", "payments"},
	{"billing", "payments"},
	{"database", "database"},
	{"migration", "database"},
	{"api", "api"},
	{"security", "security"},
	{"crypto", "security"},
	{"config", "configuration"},
}

func affectedModules(files []diff.File) []string {
	set := make(map[string]bool)
	for i := range files {
		normalized := strings.ToLower(strings.ReplaceAll(files[i].Path, "\\", "/"))
		segments := strings.Split(normalized, "/")

		// Top two directory levels identify the module.
		if len(segments) > 1 {
			set[segments[0]] = true
		}
		if len(segments) > 2 {
			set[segments[0]+"/"+segments[1]] = true
		}

		for _, kt := range moduleKeywordTags {
			if strings.Contains(normalized, kt.keyword) {
				set[kt.tag] = true
			}
		}
	}

	modules := make([]string, 0, len(set))
	for m := range set {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}

func allFiles(files []diff.File, pred func(*diff.File) bool) bool {
	if len(files) == 0 {
		return false
	}
	for i := range files {
		if !pred(&files[i]) {
			return false
		}
	}
	return true
}

func anyFile(files []diff.File, pred func(*diff.File) bool) bool {
	for i := range files {
		if pred(&files[i]) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
