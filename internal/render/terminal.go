package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/driftaldev/redline/internal/core"
	"github.com/driftaldev/redline/internal/rank"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

// Terminal writes the report as colored text grouped by severity.
func Terminal(w io.Writer, results *core.ReviewResults) {
	separator := strings.Repeat("═", 60)
	thinSeparator := strings.Repeat("─", 60)

	fmt.Fprintln(w)
	titleColor.Fprintln(w, separator)
	titleColor.Fprintln(w, "📋 REVIEW RESULTS")
	titleColor.Fprintln(w, separator)
	fmt.Fprintln(w)

	analysis := results.Analysis
	infoColor.Fprintf(w, "Change: %s  Complexity: %s  Risk: %d/100\n",
		analysis.ChangeType, analysis.Complexity, analysis.RiskScore)
	if analysis.IsBreakingChange {
		warnColor.Fprintln(w, "⚠️  Potentially breaking change")
	}
	dimColor.Fprintf(w, "%d files reviewed in %s\n",
		len(results.FilesReviewed), results.Duration.Round(10*time.Millisecond))

	if len(results.Issues) == 0 {
		fmt.Fprintln(w)
		successColor.Fprintln(w, "✅ No issues found!")
		return
	}

	groups := rank.GroupBySeverity(results.Issues)
	for _, sev := range core.AllSeverities {
		issues := groups[sev]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintln(w)
		warnColor.Fprintln(w, thinSeparator)
		warnColor.Fprintf(w, "%s %s (%d)\n", severityEmoji(sev), strings.ToUpper(string(sev)), len(issues))
		warnColor.Fprintln(w, thinSeparator)

		for _, issue := range issues {
			fmt.Fprintln(w)
			printSeverityBadge(w, issue.Severity)
			boldColor.Fprintf(w, " %s", issue.Location.File)
			dimColor.Fprintf(w, ":%d\n", issue.Location.Line)
			boldColor.Fprintf(w, "   %s\n", issue.Title)
			dimColor.Fprintf(w, "   type: %s  confidence: %.0f%%  role: %s\n",
				issue.Type, issue.Confidence*100, issue.Role)
			if issue.Description != "" {
				infoColor.Fprintf(w, "   %s\n",
					strings.ReplaceAll(strings.TrimSpace(issue.Description), "\n", "\n   "))
			}
			if issue.Suggestion != nil && issue.Suggestion.Description != "" {
				dimColor.Fprintf(w, "   💡 %s\n", issue.Suggestion.Description)
			}
		}
	}
	fmt.Fprintln(w)
}

func printSeverityBadge(w io.Writer, severity core.Severity) {
	switch severity {
	case core.SeverityCritical:
		color.New(color.BgRed, color.FgWhite, color.Bold).Fprintf(w, " %s ", severity)
	case core.SeverityHigh:
		color.New(color.BgHiRed, color.FgWhite).Fprintf(w, " %s ", severity)
	case core.SeverityMedium:
		color.New(color.BgYellow, color.FgBlack).Fprintf(w, " %s ", severity)
	case core.SeverityLow:
		color.New(color.BgGreen, color.FgWhite).Fprintf(w, " %s ", severity)
	default:
		color.New(color.BgWhite, color.FgBlack).Fprintf(w, " %s ", severity)
	}
}

// Pretty renders the markdown report through glamour for rich terminal
// output, falling back to the raw markdown when rendering fails.
func Pretty(results *core.ReviewResults) string {
	md := Markdown(results)
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return out
}
