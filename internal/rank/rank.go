// Package rank merges the raw issue stream coming out of the analysis roles
// into the final report: deduplicate, order by severity and confidence,
// filter, and group. Every operation is a pure transformation over the
// input slice.
package rank

import (
	"sort"

	"github.com/driftaldev/redline/internal/core"
)

// Deduplicate drops issues whose identity key (file:line:type:title) was
// already seen. The first occurrence wins and the relative order of the
// survivors is preserved, so dedup is idempotent.
func Deduplicate(issues []core.ReviewIssue) []core.ReviewIssue {
	seen := make(map[string]bool, len(issues))
	result := make([]core.ReviewIssue, 0, len(issues))
	for _, issue := range issues {
		key := issue.IdentityKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, issue)
	}
	return result
}

// Rank orders issues most severe first: severity ordinal ascending, then
// confidence descending. The sort is stable, so re-applying it to an
// already ranked list changes nothing.
func Rank(issues []core.ReviewIssue) []core.ReviewIssue {
	result := make([]core.ReviewIssue, len(issues))
	copy(result, issues)
	sort.SliceStable(result, func(i, j int) bool {
		oi, oj := result[i].Severity.Ordinal(), result[j].Severity.Ordinal()
		if oi != oj {
			return oi < oj
		}
		return result[i].Confidence > result[j].Confidence
	})
	return result
}

// FilterByMinSeverity keeps issues at least as severe as min.
func FilterByMinSeverity(issues []core.ReviewIssue, min core.Severity) []core.ReviewIssue {
	result := make([]core.ReviewIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity.Ordinal() <= min.Ordinal() {
			result = append(result, issue)
		}
	}
	return result
}

// FilterByConfidence keeps issues with confidence >= minConfidence.
func FilterByConfidence(issues []core.ReviewIssue, minConfidence float64) []core.ReviewIssue {
	result := make([]core.ReviewIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.Confidence >= minConfidence {
			result = append(result, issue)
		}
	}
	return result
}

// GroupBySeverity partitions issues into exactly five groups, one per
// severity in order critical through info, preserving encounter order
// within each group. Empty groups are present, not omitted.
func GroupBySeverity(issues []core.ReviewIssue) map[core.Severity][]core.ReviewIssue {
	groups := make(map[core.Severity][]core.ReviewIssue, len(core.AllSeverities))
	for _, s := range core.AllSeverities {
		groups[s] = []core.ReviewIssue{}
	}
	for _, issue := range issues {
		s := issue.Severity
		if !s.IsValid() {
			s = core.SeverityMedium
		}
		groups[s] = append(groups[s], issue)
	}
	return groups
}

// GroupByFile partitions issues by location file, preserving encounter
// order within each group.
func GroupByFile(issues []core.ReviewIssue) map[string][]core.ReviewIssue {
	groups := make(map[string][]core.ReviewIssue)
	for _, issue := range issues {
		groups[issue.Location.File] = append(groups[issue.Location.File], issue)
	}
	return groups
}

// GroupByType partitions issues by issue type, preserving encounter order
// within each group.
func GroupByType(issues []core.ReviewIssue) map[core.IssueType][]core.ReviewIssue {
	groups := make(map[core.IssueType][]core.ReviewIssue)
	for _, issue := range issues {
		groups[issue.Type] = append(groups[issue.Type], issue)
	}
	return groups
}

// Options tunes Process, the ranker's default post-processing chain.
type Options struct {
	MinConfidence float64
	// MinSeverity of "" disables the severity filter.
	MinSeverity core.Severity
}

// Process applies the default order: deduplicate, rank, filter by
// confidence, then the optional severity filter.
func Process(issues []core.ReviewIssue, opts Options) []core.ReviewIssue {
	result := Rank(Deduplicate(issues))
	result = FilterByConfidence(result, opts.MinConfidence)
	if opts.MinSeverity != "" {
		result = FilterByMinSeverity(result, opts.MinSeverity)
	}
	return result
}
