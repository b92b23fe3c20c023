package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/driftaldev/redline/internal/core"
)

// Defaults applied when the model omits or mangles a field. The pipeline
// applies them again at its boundary; doing it here too keeps single-call
// users honest.
const (
	defaultConfidence = 0.7
)

// rawIssue is the JSON shape the role prompts instruct the model to emit.
type rawIssue struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Confidence  *float64 `json:"confidence"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	EndLine     int      `json:"endLine"`
	Suggestion  string   `json:"suggestion"`
	FixedCode   string   `json:"fixedCode"`
	Rationale   string   `json:"rationale"`
	Tags        []string `json:"tags"`
}

// ParseIssues extracts the JSON issue array from a model response and
// normalizes it into review issues. Responses wrapped in code fences or
// surrounded by prose are handled; an empty array is a valid result.
func ParseIssues(response string) ([]core.ReviewIssue, error) {
	payload, err := extractJSONArray(response)
	if err != nil {
		return nil, err
	}

	var raw []rawIssue
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		// Models occasionally emit invalid escapes inside code snippets;
		// one repair pass is worth trying before giving up.
		repaired := sanitizeJSON(payload)
		if err2 := json.Unmarshal([]byte(repaired), &raw); err2 != nil {
			return nil, fmt.Errorf("invalid issue array: %w", err)
		}
	}

	issues := make([]core.ReviewIssue, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		issues = append(issues, normalizeIssue(r))
	}
	return issues, nil
}

func normalizeIssue(r rawIssue) core.ReviewIssue {
	severity, ok := core.ParseSeverity(r.Severity)
	if !ok {
		severity = core.SeverityMedium
	}

	issueType, ok := core.ParseIssueType(r.Type)
	if !ok {
		issueType = core.IssueTypeBestPractice
	}

	confidence := defaultConfidence
	if r.Confidence != nil {
		confidence = *r.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	issue := core.ReviewIssue{
		Type:        issueType,
		Severity:    severity,
		Confidence:  confidence,
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Location: core.Location{
			File:    strings.TrimSpace(r.File),
			Line:    r.Line,
			Column:  r.Column,
			EndLine: r.EndLine,
		},
		Rationale: strings.TrimSpace(r.Rationale),
		Tags:      r.Tags,
	}
	if r.Suggestion != "" || r.FixedCode != "" {
		issue.Suggestion = &core.Fix{
			Description: strings.TrimSpace(r.Suggestion),
			Code:        r.FixedCode,
		}
	}
	issue.ID = issue.Fingerprint()
	return issue
}

// extractJSONArray locates the issue array inside a response that may carry
// code fences or explanatory prose around it.
func extractJSONArray(response string) (string, error) {
	content := strings.TrimSpace(response)
	content = stripCodeFence(content)

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		// "No issues" answers without an array count as an empty result.
		lowered := strings.ToLower(content)
		if strings.Contains(lowered, "no issues") || strings.Contains(lowered, "no findings") {
			return "[]", nil
		}
		return "", fmt.Errorf("response contains no JSON array")
	}
	return content[start : end+1], nil
}

// stripCodeFence removes a wrapping ```json ... ``` fence if present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return trimmed
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}

// sanitizeJSON escapes lone backslashes that are not part of a valid JSON
// escape sequence, the most common corruption in model output carrying
// Windows paths or regex snippets.
func sanitizeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				b.WriteByte(c)
				continue
			}
		}
		b.WriteString(`\\`)
	}
	return b.String()
}
