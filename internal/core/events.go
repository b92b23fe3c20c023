// Package core defines the interfaces and data structures shared across the
// application: review issues, run results, job contracts, and the event
// payloads that trigger reviews.
package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// ReviewEvent describes one requested review run. It is produced by the
// webhook handler or the CLI and consumed by the job queue.
type ReviewEvent struct {
	// Repository details
	RepoOwner    string
	RepoName     string
	RepoFullName string
	RepoCloneURL string
	Language     string

	PRNumber int
	PRTitle  string
	PRBody   string
	HeadSHA  string
	BaseRef  string

	Commenter      string
	InstallationID int64

	// Local runs review a working tree instead of a pull request.
	IsLocalRun bool
	LocalPath  string
}

// EventFromIssueComment transforms a raw GitHub IssueCommentEvent into the
// application's internal ReviewEvent. It acts as an anti-corruption layer,
// validating the webhook payload before it reaches a job. Only "/review"
// comments on pull requests qualify.
func EventFromIssueComment(event *github.IssueCommentEvent) (*ReviewEvent, error) {
	if !event.GetIssue().IsPullRequest() {
		return nil, fmt.Errorf("comment is not on a pull request")
	}

	if !strings.EqualFold(strings.TrimSpace(event.GetComment().GetBody()), "/review") {
		return nil, fmt.Errorf("comment is not a review command")
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	prNumber := event.GetIssue().GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", prNumber)
	}

	if event.GetComment().GetUser() == nil || event.GetComment().GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("commenter information is missing from the event")
	}

	if event.GetInstallation() == nil || event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &ReviewEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		RepoCloneURL:   repo.GetCloneURL(),
		Language:       repo.GetLanguage(),
		InstallationID: event.GetInstallation().GetID(),
		PRNumber:       prNumber,
		PRTitle:        event.GetIssue().GetTitle(),
		PRBody:         event.GetIssue().GetBody(),
		Commenter:      event.GetComment().GetUser().GetLogin(),
	}, nil
}

// EventFromPullRequest builds a ReviewEvent from a pull_request webhook.
// Only opened, reopened and synchronize actions trigger a review.
func EventFromPullRequest(event *github.PullRequestEvent) (*ReviewEvent, error) {
	action := event.GetAction()
	if action != "opened" && action != "synchronize" && action != "reopened" {
		return nil, fmt.Errorf("pull request action %q does not trigger a review", action)
	}

	repo := event.GetRepo()
	pr := event.GetPullRequest()
	if repo == nil || pr == nil {
		return nil, fmt.Errorf("repository or pull request information is missing from the event")
	}
	if repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository owner or name is missing from the event")
	}
	if pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", pr.GetNumber())
	}

	return &ReviewEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		RepoCloneURL:   repo.GetCloneURL(),
		Language:       repo.GetLanguage(),
		InstallationID: event.GetInstallation().GetID(),
		PRNumber:       pr.GetNumber(),
		PRTitle:        pr.GetTitle(),
		PRBody:         pr.GetBody(),
		HeadSHA:        pr.GetHead().GetSHA(),
		BaseRef:        pr.GetBase().GetRef(),
		Commenter:      event.GetSender().GetLogin(),
	}, nil
}

// LocalReviewEvent builds a ReviewEvent for a review of a local working tree.
func LocalReviewEvent(path, fullName, baseRef string) *ReviewEvent {
	return &ReviewEvent{
		RepoFullName: fullName,
		RepoCloneURL: path,
		LocalPath:    path,
		BaseRef:      baseRef,
		IsLocalRun:   true,
	}
}
