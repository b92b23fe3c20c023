package core

import "time"

// ReviewResults is the terminal aggregate of one review run: the ranked
// issues plus run metadata. It is immutable once handed to the caller.
type ReviewResults struct {
	Issues        []ReviewIssue  `json:"issues"`
	FilesReviewed []string       `json:"files_reviewed"`
	Duration      time.Duration  `json:"duration"`
	Analysis      ChangeAnalysis `json:"analysis"`
}

// SeverityCounts tallies issues per severity, always covering all five
// severities even when a bucket is empty.
func (r *ReviewResults) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int, len(AllSeverities))
	for _, s := range AllSeverities {
		counts[s] = 0
	}
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// HighestSeverity returns the most severe severity present, or info when the
// report is empty.
func (r *ReviewResults) HighestSeverity() Severity {
	highest := SeverityInfo
	for _, issue := range r.Issues {
		if issue.Severity.Ordinal() < highest.Ordinal() {
			highest = issue.Severity
		}
	}
	return highest
}
