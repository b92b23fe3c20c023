package core

// ChangeType names the overall shape of a diff.
type ChangeType string

const (
	ChangeTypeFeature  ChangeType = "feature"
	ChangeTypeBugfix   ChangeType = "bugfix"
	ChangeTypeRefactor ChangeType = "refactor"
	ChangeTypeDocs     ChangeType = "docs"
	ChangeTypeTest     ChangeType = "test"
	ChangeTypeChore    ChangeType = "chore"
)

// Complexity grades how involved a change is, from trivial to critical.
type Complexity string

const (
	ComplexityTrivial  Complexity = "trivial"
	ComplexityLow      Complexity = "low"
	ComplexityMedium   Complexity = "medium"
	ComplexityHigh     Complexity = "high"
	ComplexityCritical Complexity = "critical"
)

var complexityOrdinals = map[Complexity]int{
	ComplexityTrivial:  0,
	ComplexityLow:      1,
	ComplexityMedium:   2,
	ComplexityHigh:     3,
	ComplexityCritical: 4,
}

// Ordinal returns the rank of the complexity tier, trivial=0 to critical=4.
func (c Complexity) Ordinal() int {
	if ord, ok := complexityOrdinals[c]; ok {
		return ord
	}
	return complexityOrdinals[ComplexityMedium]
}

// ChangeAnalysis is the classifier's one-per-run verdict about a diff. It is
// created once, never mutated, and travels with the run's results.
type ChangeAnalysis struct {
	ChangeType       ChangeType `json:"change_type"`
	Complexity       Complexity `json:"complexity"`
	RiskScore        int        `json:"risk_score"`
	AffectedModules  []string   `json:"affected_modules"`
	HasTestCoverage  bool       `json:"has_test_coverage"`
	IsBreakingChange bool       `json:"is_breaking_change"`
	FilesChanged     int        `json:"files_changed"`
	LinesAdded       int        `json:"lines_added"`
	LinesRemoved     int        `json:"lines_removed"`
}

// DefaultChangeAnalysis is the degraded classification substituted when no
// meaningful classification can be produced. The review still runs; the risk
// numbers just carry no signal.
func DefaultChangeAnalysis() ChangeAnalysis {
	return ChangeAnalysis{
		ChangeType: ChangeTypeFeature,
		Complexity: ComplexityMedium,
		RiskScore:  50,
	}
}
