package gitutil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// LocalDiff collects the unified diff of a working tree against baseRef.
// With an empty baseRef the diff covers staged and unstaged changes against
// HEAD; otherwise it is a merge-base diff (baseRef...HEAD) plus any working
// tree changes.
func (c *Client) LocalDiff(ctx context.Context, repoPath, baseRef string) (string, error) {
	var parts []string

	if baseRef != "" {
		committed, err := c.runDiff(ctx, repoPath, baseRef+"...HEAD")
		if err != nil {
			// A missing merge base (shallow clone, unrelated branch) falls
			// back to a two-dot diff before giving up.
			committed, err = c.runDiff(ctx, repoPath, baseRef)
			if err != nil {
				return "", fmt.Errorf("diff against base ref %q: %w", baseRef, err)
			}
		}
		parts = append(parts, committed)
	}

	working, err := c.runDiff(ctx, repoPath, "HEAD")
	if err != nil {
		// A repo without commits has no HEAD; an empty working diff is fine.
		c.Logger.Debug("working tree diff unavailable", "error", err)
	} else {
		parts = append(parts, working)
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n"))
	if combined == "" {
		return "", nil
	}
	return combined + "\n", nil
}

func (c *Client) runDiff(ctx context.Context, repoPath string, rev string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-c", "core.longpaths=true", "diff", "--no-color", rev)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git diff %s failed: %w", rev, err)
	}
	return string(out), nil
}
