package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Severity classifies how urgent a review issue is. The zero ordinal is the
// most severe; ranking sorts ascending by ordinal.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// AllSeverities lists every severity from most to least severe. Grouping by
// severity always produces one group per entry, in this order.
var AllSeverities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

var severityOrdinals = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// Ordinal returns the sort position of the severity, critical=0 through
// info=4. Unrecognized severities rank as medium so a misbehaving analyzer
// cannot push its issues to the top or bottom of a report.
func (s Severity) Ordinal() int {
	if ord, ok := severityOrdinals[s]; ok {
		return ord
	}
	return severityOrdinals[SeverityMedium]
}

// IsValid reports whether s is one of the five known severities.
func (s Severity) IsValid() bool {
	_, ok := severityOrdinals[s]
	return ok
}

// ParseSeverity normalizes a free-form severity string. The second return
// value is false when the input is not a known severity.
func ParseSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.IsValid()
}

// IssueType categorizes what kind of problem an issue describes.
type IssueType string

const (
	IssueTypeBug          IssueType = "bug"
	IssueTypeSecurity     IssueType = "security"
	IssueTypePerformance  IssueType = "performance"
	IssueTypeStyle        IssueType = "style"
	IssueTypeBestPractice IssueType = "best-practice"
)

// AllIssueTypes lists the known issue types in their grouping order.
var AllIssueTypes = []IssueType{
	IssueTypeBug,
	IssueTypeSecurity,
	IssueTypePerformance,
	IssueTypeStyle,
	IssueTypeBestPractice,
}

// ParseIssueType normalizes a free-form type string, accepting a few common
// spellings the models produce ("best practice", "bestpractice").
func ParseIssueType(raw string) (IssueType, bool) {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, " ", "-")
	t = strings.ReplaceAll(t, "_", "-")
	if t == "bestpractice" {
		t = string(IssueTypeBestPractice)
	}
	it := IssueType(t)
	for _, known := range AllIssueTypes {
		if it == known {
			return it, true
		}
	}
	return it, false
}

// Location points at the code an issue is about. Line numbers refer to the
// new side of the diff.
type Location struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	EndLine int    `json:"end_line,omitempty"`
}

// Fix carries an optional suggested remediation for an issue.
type Fix struct {
	Description string `json:"description"`
	Diff        string `json:"diff,omitempty"`
	Code        string `json:"code,omitempty"`
}

// ReviewIssue is a single finding produced by one analysis role for one file.
type ReviewIssue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Confidence  float64   `json:"confidence"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    Location  `json:"location"`
	Suggestion  *Fix      `json:"suggestion,omitempty"`
	Rationale   string    `json:"rationale,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Role        Role      `json:"role,omitempty"`
}

// IdentityKey is the deduplication identity of an issue. Two issues with the
// same key describe the same finding regardless of which role produced them.
func (i ReviewIssue) IdentityKey() string {
	return fmt.Sprintf("%s:%d:%s:%s", i.Location.File, i.Location.Line, i.Type, i.Title)
}

// Fingerprint derives a short stable ID from the identity key.
func (i ReviewIssue) Fingerprint() string {
	sum := sha256.Sum256([]byte(i.IdentityKey()))
	return hex.EncodeToString(sum[:8])
}
