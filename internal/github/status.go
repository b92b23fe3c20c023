package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/driftaldev/redline/internal/core"
)

const checkRunName = "Redline Review"

// StatusUpdater reports review progress and outcomes back to the pull
// request: check runs for lifecycle, a review with line comments for the
// findings.
type StatusUpdater interface {
	InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error
	PostReview(ctx context.Context, event *core.ReviewEvent, summary string, results *core.ReviewResults, patches map[string]string) error
	PostSimpleComment(ctx context.Context, event *core.ReviewEvent, body string) error
}

type statusUpdater struct {
	client Client
	logger *slog.Logger
}

// NewStatusUpdater creates a StatusUpdater over a Client.
func NewStatusUpdater(client Client, logger *slog.Logger) StatusUpdater {
	return &statusUpdater{client: client, logger: logger}
}

// PostSimpleComment posts a single general comment on the pull request.
func (s *statusUpdater) PostSimpleComment(ctx context.Context, event *core.ReviewEvent, body string) error {
	return s.client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, body)
}

// InProgress creates a check run in the "in_progress" state.
func (s *statusUpdater) InProgress(ctx context.Context, event *core.ReviewEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    checkRunName,
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := s.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("creating check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed transitions a check run to "completed" with a conclusion.
func (s *statusUpdater) Completed(ctx context.Context, event *core.ReviewEvent, checkRunID int64, conclusion, title, summary string) error {
	opts := github.UpdateCheckRunOptions{
		Name:        checkRunName,
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: time.Now()},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := s.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}

// PostReview posts the findings as a pull request review. Issues whose line
// is commentable on the new side of the patch become inline comments; the
// rest stay in the summary body only.
func (s *statusUpdater) PostReview(ctx context.Context, event *core.ReviewEvent, summary string, results *core.ReviewResults, patches map[string]string) error {
	validLines := make(map[string]map[int]struct{}, len(patches))
	for file, patch := range patches {
		validLines[file] = CommentableLines(file, patch, s.logger)
	}

	var comments []DraftReviewComment
	for _, issue := range results.Issues {
		lines, ok := validLines[issue.Location.File]
		if !ok {
			continue
		}
		if _, ok := lines[issue.Location.Line]; !ok {
			s.logger.Debug("issue line not commentable, keeping in summary only",
				"file", issue.Location.File, "line", issue.Location.Line)
			continue
		}
		comments = append(comments, DraftReviewComment{
			Path: issue.Location.File,
			Line: issue.Location.Line,
			Body: FormatInlineComment(issue),
		})
	}

	return s.client.CreateReview(ctx, event.RepoOwner, event.RepoName, event.PRNumber, summary, comments)
}

// FormatInlineComment renders one issue as a GitHub comment with a severity
// header and an alert-styled body.
func FormatInlineComment(issue core.ReviewIssue) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s %s | %s | %s\n\n",
		SeverityEmoji(issue.Severity), issue.Severity, issue.Type, issue.Title)

	if desc := strings.TrimSpace(issue.Description); desc != "" {
		fmt.Fprintf(&sb, "> [!%s]\n", severityAlert(issue.Severity))
		for _, line := range strings.Split(desc, "\n") {
			if line == "" {
				sb.WriteString(">\n")
			} else {
				fmt.Fprintf(&sb, "> %s\n", line)
			}
		}
	}

	if issue.Suggestion != nil {
		sb.WriteString("\n")
		if issue.Suggestion.Description != "" {
			fmt.Fprintf(&sb, "**Suggestion**: %s\n", issue.Suggestion.Description)
		}
		if issue.Suggestion.Code != "" {
			fmt.Fprintf(&sb, "```suggestion\n%s\n```\n", strings.TrimSuffix(issue.Suggestion.Code, "\n"))
		}
	}
	if issue.Rationale != "" {
		fmt.Fprintf(&sb, "\n<sub>%s</sub>\n", issue.Rationale)
	}
	if issue.Confidence > 0 {
		fmt.Fprintf(&sb, "\n<sub>confidence: %.0f%%</sub>\n", issue.Confidence*100)
	}
	return sb.String()
}

// Conclusion maps a review outcome to a check run conclusion: failures only
// for critical or high findings.
func Conclusion(results *core.ReviewResults) string {
	switch results.HighestSeverity() {
	case core.SeverityCritical, core.SeverityHigh:
		return "failure"
	case core.SeverityMedium:
		return "neutral"
	default:
		return "success"
	}
}

// SeverityEmoji returns the marker used in review output for a severity.
func SeverityEmoji(severity core.Severity) string {
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

// severityAlert maps a severity to a GitHub alert type.
func severityAlert(severity core.Severity) string {
	switch severity {
	case core.SeverityCritical:
		return "CAUTION"
	case core.SeverityHigh:
		return "WARNING"
	case core.SeverityMedium:
		return "IMPORTANT"
	default:
		return "NOTE"
	}
}
