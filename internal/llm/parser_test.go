package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftaldev/redline/internal/core"
)

func TestParseIssuesPlainArray(t *testing.T) {
	response := `[
		{
			"type": "security",
			"severity": "critical",
			"confidence": 0.95,
			"title": "SQL built from user input",
			"description": "The query concatenates the request parameter.",
			"file": "db/query.ts",
			"line": 42,
			"suggestion": "Use a parameterized query.",
			"tags": ["cwe-89"]
		}
	]`

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, core.IssueTypeSecurity, issue.Type)
	assert.Equal(t, core.SeverityCritical, issue.Severity)
	assert.Equal(t, 0.95, issue.Confidence)
	assert.Equal(t, "db/query.ts", issue.Location.File)
	assert.Equal(t, 42, issue.Location.Line)
	require.NotNil(t, issue.Suggestion)
	assert.Equal(t, "Use a parameterized query.", issue.Suggestion.Description)
	assert.NotEmpty(t, issue.ID)
}

func TestParseIssuesStripsCodeFence(t *testing.T) {
	response := "```json\n[{\"type\":\"bug\",\"severity\":\"high\",\"title\":\"off by one\",\"file\":\"a.go\",\"line\":7}]\n```"

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "off by one", issues[0].Title)
}

func TestParseIssuesSurroundingProse(t *testing.T) {
	response := "Here is what I found:\n\n[{\"type\":\"bug\",\"severity\":\"low\",\"title\":\"x\",\"file\":\"a.go\",\"line\":1}]\n\nLet me know if you need more."

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)
}

func TestParseIssuesDefaults(t *testing.T) {
	// Severity and confidence missing, unknown type.
	response := `[{"type":"weirdness","title":"something","file":"a.go","line":3}]`

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, core.SeverityMedium, issues[0].Severity)
	assert.Equal(t, defaultConfidence, issues[0].Confidence)
	assert.Equal(t, core.IssueTypeBestPractice, issues[0].Type)
}

func TestParseIssuesClampsConfidence(t *testing.T) {
	response := `[{"type":"bug","severity":"low","confidence":3.5,"title":"x","file":"a.go","line":1}]`

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 1.0, issues[0].Confidence)
}

func TestParseIssuesEmptyArray(t *testing.T) {
	issues, err := ParseIssues("[]")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestParseIssuesNoIssuesProse(t *testing.T) {
	issues, err := ParseIssues("I reviewed the change carefully and found no issues.")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestParseIssuesGarbage(t *testing.T) {
	_, err := ParseIssues("the model crashed halfway thr")
	assert.Error(t, err)
}

func TestParseIssuesRepairsInvalidEscapes(t *testing.T) {
	// A lone backslash in a path is invalid JSON but repairable.
	response := `[{"type":"bug","severity":"low","title":"bad path","description":"see C:\Users\dev","file":"a.go","line":1}]`

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "Users")
}

func TestParseIssuesSkipsUntitled(t *testing.T) {
	response := `[{"type":"bug","severity":"low","title":"  ","file":"a.go","line":1},{"type":"bug","severity":"low","title":"real","file":"a.go","line":2}]`

	issues, err := ParseIssues(response)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "real", issues[0].Title)
}
