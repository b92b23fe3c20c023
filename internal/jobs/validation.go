package jobs

import (
	"fmt"

	"github.com/driftaldev/redline/internal/core"
)

// validateEvent checks that a review event carries everything its run needs.
// Local runs only need a path; webhook runs need full repository and
// installation identity.
func validateEvent(event *core.ReviewEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if event.IsLocalRun {
		if event.LocalPath == "" {
			return fmt.Errorf("local run requires a repository path")
		}
		return nil
	}

	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoFullName == "" {
		return fmt.Errorf("repository full name cannot be empty")
	}
	if event.RepoCloneURL == "" {
		return fmt.Errorf("repository clone URL cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}
