// Package render turns review results into their presentation formats:
// markdown for pull request comments, colored text and glamour-rendered
// markdown for terminals, and JSON for machine consumers.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/rank"
)

func severityEmoji(severity core.Severity) string {
	switch severity {
	case core.SeverityCritical:
		return "🔴"
	case core.SeverityHigh:
		return "🟠"
	case core.SeverityMedium:
		return "🟡"
	case core.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// Markdown renders the full report as GitHub-flavored markdown, used both as
// the PR review summary and for the --markdown CLI flag.
func Markdown(results *core.ReviewResults) string {
	var sb strings.Builder

	sb.WriteString("## Redline Review\n\n")
	writeAnalysisLine(&sb, results.Analysis)

	if len(results.Issues) == 0 {
		sb.WriteString("\n✅ No issues found.\n")
		return sb.String()
	}

	counts := results.SeverityCounts()
	sb.WriteString("\n| Severity | Count |\n|----------|-------|\n")
	for _, sev := range core.AllSeverities {
		if counts[sev] > 0 {
			fmt.Fprintf(&sb, "| %s %s | %d |\n", severityEmoji(sev), sev, counts[sev])
		}
	}

	groups := rank.GroupBySeverity(results.Issues)
	for _, sev := range core.AllSeverities {
		issues := groups[sev]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n### %s %s (%d)\n\n", severityEmoji(sev), strings.ToUpper(string(sev)), len(issues))
		for _, issue := range issues {
			writeIssueMarkdown(&sb, issue)
		}
	}

	fmt.Fprintf(&sb, "\n<sub>%d files reviewed in %s</sub>\n",
		len(results.FilesReviewed), results.Duration.Round(10*time.Millisecond))
	return sb.String()
}

func writeAnalysisLine(sb *strings.Builder, analysis core.ChangeAnalysis) {
	fmt.Fprintf(sb, "**%s** change, **%s** complexity, risk %d/100",
		analysis.ChangeType, analysis.Complexity, analysis.RiskScore)
	if analysis.IsBreakingChange {
		sb.WriteString(" — ⚠️ breaking change")
	}
	if !analysis.HasTestCoverage {
		sb.WriteString(" — no test coverage")
	}
	sb.WriteString("\n")
}

func writeIssueMarkdown(sb *strings.Builder, issue core.ReviewIssue) {
	fmt.Fprintf(sb, "- **%s** — `%s:%d` (%s, %.0f%%)\n",
		issue.Title, issue.Location.File, issue.Location.Line, issue.Type, issue.Confidence*100)
	if issue.Description != "" {
		for _, line := range strings.Split(strings.TrimSpace(issue.Description), "\n") {
			fmt.Fprintf(sb, "  %s\n", line)
		}
	}
	if issue.Suggestion != nil && issue.Suggestion.Description != "" {
		fmt.Fprintf(sb, "  _Suggestion: %s_\n", issue.Suggestion.Description)
	}
}
