package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftaldev/redline/internal/core"
)

func issue(file string, line int, typ core.IssueType, title string, sev core.Severity, conf float64) core.ReviewIssue {
	return core.ReviewIssue{
		Type:       typ,
		Severity:   sev,
		Confidence: conf,
		Title:      title,
		Location:   core.Location{File: file, Line: line},
	}
}

func TestDeduplicateFirstWins(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("auth.ts", 10, core.IssueTypeSecurity, "hardcoded secret", core.SeverityCritical, 0.9),
		issue("main.go", 4, core.IssueTypeBug, "nil deref", core.SeverityHigh, 0.8),
		// Duplicate of the first by identity key, different role origin.
		issue("auth.ts", 10, core.IssueTypeSecurity, "hardcoded secret", core.SeverityCritical, 0.6),
	}

	got := Deduplicate(issues)
	require.Len(t, got, 2)
	assert.Equal(t, "hardcoded secret", got[0].Title)
	assert.Equal(t, 0.9, got[0].Confidence, "first occurrence wins")
	assert.Equal(t, "nil deref", got[1].Title)
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("a.go", 1, core.IssueTypeBug, "x", core.SeverityLow, 0.5),
		issue("a.go", 1, core.IssueTypeBug, "x", core.SeverityLow, 0.5),
		issue("b.go", 2, core.IssueTypeStyle, "y", core.SeverityInfo, 0.9),
	}

	once := Deduplicate(issues)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func TestRankSeverityThenConfidence(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("a.go", 1, core.IssueTypeStyle, "info issue", core.SeverityInfo, 1.0),
		issue("b.go", 2, core.IssueTypeBug, "high low-conf", core.SeverityHigh, 0.5),
		issue("c.go", 3, core.IssueTypeBug, "high high-conf", core.SeverityHigh, 0.9),
		issue("d.go", 4, core.IssueTypeSecurity, "critical", core.SeverityCritical, 0.4),
	}

	got := Rank(issues)
	require.Len(t, got, 4)
	assert.Equal(t, "critical", got[0].Title)
	assert.Equal(t, "high high-conf", got[1].Title)
	assert.Equal(t, "high low-conf", got[2].Title)
	assert.Equal(t, "info issue", got[3].Title)
}

func TestRankIsStable(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("z.go", 1, core.IssueTypeBug, "first", core.SeverityMedium, 0.7),
		issue("a.go", 2, core.IssueTypeBug, "second", core.SeverityMedium, 0.7),
	}

	once := Rank(issues)
	twice := Rank(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "first", once[0].Title, "equal keys keep input order")
}

func TestRankDoesNotMutateInput(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("a.go", 1, core.IssueTypeStyle, "low", core.SeverityLow, 0.5),
		issue("b.go", 2, core.IssueTypeBug, "critical", core.SeverityCritical, 0.5),
	}

	_ = Rank(issues)
	assert.Equal(t, "low", issues[0].Title)
}

func TestFilterByMinSeverity(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("a.go", 1, core.IssueTypeBug, "crit", core.SeverityCritical, 0.9),
		issue("a.go", 2, core.IssueTypeBug, "med", core.SeverityMedium, 0.9),
		issue("a.go", 3, core.IssueTypeBug, "info", core.SeverityInfo, 0.9),
	}

	got := FilterByMinSeverity(issues, core.SeverityMedium)
	require.Len(t, got, 2)
	assert.Equal(t, "crit", got[0].Title)
	assert.Equal(t, "med", got[1].Title)
}

func TestFilterByConfidence(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("a.go", 1, core.IssueTypeBug, "sure", core.SeverityLow, 0.8),
		issue("a.go", 2, core.IssueTypeBug, "boundary", core.SeverityLow, 0.5),
		issue("a.go", 3, core.IssueTypeBug, "guess", core.SeverityLow, 0.2),
	}

	got := FilterByConfidence(issues, 0.5)
	require.Len(t, got, 2)
	assert.Equal(t, "sure", got[0].Title)
	assert.Equal(t, "boundary", got[1].Title)
}

func TestGroupBySeverityAlwaysFiveGroups(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("a.go", 1, core.IssueTypeBug, "h1", core.SeverityHigh, 0.9),
		issue("b.go", 2, core.IssueTypeBug, "h2", core.SeverityHigh, 0.8),
		issue("c.go", 3, core.IssueTypeStyle, "i1", core.SeverityInfo, 0.7),
	}

	groups := GroupBySeverity(issues)
	require.Len(t, groups, 5)

	total := 0
	for _, s := range core.AllSeverities {
		group, ok := groups[s]
		require.True(t, ok, "group %s must be present", s)
		total += len(group)
	}
	assert.Equal(t, len(issues), total)
	assert.Equal(t, "h1", groups[core.SeverityHigh][0].Title, "encounter order kept")
	assert.Empty(t, groups[core.SeverityCritical])
}

func TestGroupBySeverityEmptyInput(t *testing.T) {
	groups := GroupBySeverity(nil)
	require.Len(t, groups, 5)
	for _, s := range core.AllSeverities {
		assert.Empty(t, groups[s])
	}
}

func TestGroupByFileAndType(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("a.go", 1, core.IssueTypeBug, "one", core.SeverityLow, 0.5),
		issue("b.go", 2, core.IssueTypeStyle, "two", core.SeverityLow, 0.5),
		issue("a.go", 3, core.IssueTypeBug, "three", core.SeverityLow, 0.5),
	}

	byFile := GroupByFile(issues)
	require.Len(t, byFile, 2)
	assert.Equal(t, []string{"one", "three"}, titles(byFile["a.go"]))

	byType := GroupByType(issues)
	require.Len(t, byType, 2)
	assert.Equal(t, []string{"one", "three"}, titles(byType[core.IssueTypeBug]))
}

func TestProcessDefaultOrder(t *testing.T) {
	issues := []core.ReviewIssue{
		issue("auth.ts", 10, core.IssueTypeSecurity, "token leak", core.SeverityCritical, 0.9),
		issue("auth.ts", 10, core.IssueTypeSecurity, "token leak", core.SeverityCritical, 0.9),
		issue("x.go", 5, core.IssueTypeStyle, "naming", core.SeverityInfo, 0.3),
		issue("y.go", 6, core.IssueTypeBug, "off by one", core.SeverityHigh, 0.8),
	}

	got := Process(issues, Options{MinConfidence: 0.5})
	require.Len(t, got, 2)
	assert.Equal(t, "token leak", got[0].Title)
	assert.Equal(t, "off by one", got[1].Title)

	withSeverity := Process(issues, Options{MinConfidence: 0.5, MinSeverity: core.SeverityCritical})
	require.Len(t, withSeverity, 1)
	assert.Equal(t, "token leak", withSeverity[0].Title)
}

func titles(issues []core.ReviewIssue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Title
	}
	return out
}
