package classify

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/diff"
)

// makeFile builds a diff.File whose counts match its lines.
func makeFile(path string, status diff.Status, added, removed []string) diff.File {
	f := diff.File{Path: path, Status: status}
	chunk := diff.Chunk{Header: "@@ -1,1 +1,1 @@"}
	for _, content := range removed {
		chunk.Lines = append(chunk.Lines, diff.Line{Op: diff.OpRemoved, Content: content})
		f.Deletions++
	}
	for _, content := range added {
		chunk.Lines = append(chunk.Lines, diff.Line{Op: diff.OpAdded, Content: content})
		f.Additions++
	}
	f.Chunks = []diff.Chunk{chunk}
	return f
}

func repeatLines(line string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return lines
}

func newClassifier() *Classifier {
	return New(slog.Default())
}

func TestClassify_ChangeType(t *testing.T) {
	tests := []struct {
		name  string
		files []diff.File
		want  core.ChangeType
	}{
		{
			name: "only test files",
			files: []diff.File{
				makeFile("tests/auth.test.ts", diff.StatusModified, []string{"expect(x)"}, nil),
				makeFile("tests/util.test.ts", diff.StatusModified, []string{"expect(y)"}, nil),
			},
			want: core.ChangeTypeTest,
		},
		{
			name: "only docs",
			files: []diff.File{
				makeFile("README.md", diff.StatusModified, []string{"# title"}, nil),
				makeFile("docs/guide.md", diff.StatusModified, []string{"text"}, nil),
			},
			want: core.ChangeTypeDocs,
		},
		{
			name: "only manifests",
			files: []diff.File{
				makeFile("package.json", diff.StatusModified, []string{`"dep": "1.0"`}, nil),
				makeFile("go.mod", diff.StatusModified, []string{"require x v1"}, nil),
			},
			want: core.ChangeTypeChore,
		},
		{
			name: "new file with mostly additions",
			files: []diff.File{
				makeFile("src/widget.ts", diff.StatusAdded, repeatLines("line", 30), nil),
				makeFile("src/app.ts", diff.StatusModified, repeatLines("line", 5), repeatLines("old", 2)),
			},
			want: core.ChangeTypeFeature,
		},
		{
			name: "large balanced rewrite",
			files: []diff.File{
				makeFile("src/engine.ts", diff.StatusModified,
					repeatLines("line", 80), repeatLines("old", 70)),
			},
			want: core.ChangeTypeRefactor,
		},
		{
			name: "small modification",
			files: []diff.File{
				makeFile("src/fix.ts", diff.StatusModified, repeatLines("line", 3), repeatLines("old", 2)),
			},
			want: core.ChangeTypeBugfix,
		},
		{
			name:  "empty diff",
			files: nil,
			want:  core.ChangeTypeFeature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newClassifier().Classify(tt.files)
			if got.ChangeType != tt.want {
				t.Errorf("ChangeType = %q, want %q", got.ChangeType, tt.want)
			}
		})
	}
}

func TestClassify_BreakingChange(t *testing.T) {
	tests := []struct {
		name  string
		files []diff.File
		want  bool
	}{
		{
			name: "deleted file is breaking",
			files: []diff.File{
				makeFile("src/legacy.ts", diff.StatusDeleted, nil, repeatLines("old", 10)),
			},
			want: true,
		},
		{
			name: "removed export line is breaking",
			files: []diff.File{
				makeFile("src/api.ts", diff.StatusModified,
					[]string{"const helper = 1;"},
					[]string{"export function fetchUser(id: string) {"}),
			},
			want: true,
		},
		{
			name: "removed signature without replacement is breaking",
			files: []diff.File{
				makeFile("src/service.ts", diff.StatusModified,
					[]string{"  otherThing() {"},
					[]string{"  function resolveConfig(env) {"}),
			},
			want: true,
		},
		{
			name: "signature moved but kept is not breaking",
			files: []diff.File{
				makeFile("src/service.ts", diff.StatusModified,
					[]string{"function resolveConfig(env, overrides) {"},
					[]string{"function resolveConfig(env) {"}),
			},
			want: false,
		},
		{
			name: "private helper removal is not breaking",
			files: []diff.File{
				makeFile("src/service.ts", diff.StatusModified,
					[]string{"const x = 1;"},
					[]string{"function _internalHelper(a) {"}),
			},
			want: false,
		},
		{
			name: "plain edit is not breaking",
			files: []diff.File{
				makeFile("src/service.ts", diff.StatusModified,
					[]string{"const timeout = 5000;"},
					[]string{"const timeout = 3000;"}),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newClassifier().Classify(tt.files)
			if got.IsBreakingChange != tt.want {
				t.Errorf("IsBreakingChange = %v, want %v", got.IsBreakingChange, tt.want)
			}
		})
	}
}

func TestClassify_RiskScore(t *testing.T) {
	t.Run("critical path and no tests raise risk", func(t *testing.T) {
		files := []diff.File{
			makeFile("src/auth/session.ts", diff.StatusModified,
				repeatLines("if (x) { y(); }", 10), repeatLines("old", 5)),
		}
		analysis := newClassifier().Classify(files)
		// No deletion, no export removal: not breaking, but auth path +20
		// and missing tests +15 on top of the tier base.
		base := map[core.Complexity]int{
			core.ComplexityTrivial: 5, core.ComplexityLow: 15, core.ComplexityMedium: 30,
			core.ComplexityHigh: 50, core.ComplexityCritical: 70,
		}[analysis.Complexity]
		want := base + 20 + 15
		if analysis.RiskScore != want {
			t.Errorf("RiskScore = %d, want %d", analysis.RiskScore, want)
		}
	})

	t.Run("risk is capped at 100", func(t *testing.T) {
		var files []diff.File
		for i := 0; i < 20; i++ {
			files = append(files, makeFile("src/payments/engine.ts", diff.StatusModified,
				repeatLines("if (a && b) { run(); }", 40), repeatLines("old", 40)))
		}
		files = append(files, makeFile("src/payments/old.ts", diff.StatusDeleted, nil, repeatLines("x", 5)))
		analysis := newClassifier().Classify(files)
		if analysis.RiskScore != 100 {
			t.Errorf("RiskScore = %d, want capped 100", analysis.RiskScore)
		}
		if analysis.Complexity != core.ComplexityCritical {
			t.Errorf("Complexity = %q, want critical", analysis.Complexity)
		}
	})
}

func TestClassify_AffectedModules(t *testing.T) {
	files := []diff.File{
		makeFile("src/auth/login.ts", diff.StatusModified, []string{"x"}, nil),
		makeFile("src/billing/invoice.ts", diff.StatusModified, []string{"y"}, nil),
	}
	analysis := newClassifier().Classify(files)

	for _, want := range []string{"src", "src/auth", "src/billing", "authentication", "payments"} {
		if !slices.Contains(analysis.AffectedModules, want) {
			t.Errorf("AffectedModules missing %q: %v", want, analysis.AffectedModules)
		}
	}
	if !slices.IsSorted(analysis.AffectedModules) {
		t.Errorf("AffectedModules not sorted: %v", analysis.AffectedModules)
	}
}

func TestClassify_TestCoverage(t *testing.T) {
	files := []diff.File{
		makeFile("src/feature.ts", diff.StatusModified, []string{"x"}, nil),
		makeFile("src/feature.test.ts", diff.StatusModified, []string{"expect"}, nil),
	}
	analysis := newClassifier().Classify(files)
	if !analysis.HasTestCoverage {
		t.Error("expected HasTestCoverage with a test file in the diff")
	}

	analysis = newClassifier().Classify(files[:1])
	if analysis.HasTestCoverage {
		t.Error("expected no HasTestCoverage without test files")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	files := []diff.File{
		makeFile("src/a.ts", diff.StatusModified, repeatLines("if (x) {}", 10), repeatLines("y", 10)),
		makeFile("src/b.ts", diff.StatusAdded, repeatLines("line", 20), nil),
	}
	first := newClassifier().Classify(files)
	for i := 0; i < 5; i++ {
		again := newClassifier().Classify(files)
		if again.ChangeType != first.ChangeType || again.Complexity != first.Complexity ||
			again.RiskScore != first.RiskScore {
			t.Fatalf("classification not deterministic: %+v vs %+v", first, again)
		}
		if !slices.Equal(again.AffectedModules, first.AffectedModules) {
			t.Fatalf("modules not deterministic: %v vs %v", first.AffectedModules, again.AffectedModules)
		}
	}
}
