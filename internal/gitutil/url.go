package gitutil

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParsePullRequestURL extracts owner, repository and pull request number
// from a URL of the form https://github.com/{owner}/{repo}/pull/{number}.
func ParsePullRequestURL(raw string) (string, string, int, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid pull request URL %q: %w", raw, err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return "", "", 0, fmt.Errorf("not a github.com pull request URL: %s", raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[2] != "pull" {
		return "", "", 0, fmt.Errorf("expected github.com/{owner}/{repo}/pull/{number}, got: %s", raw)
	}

	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return "", "", 0, fmt.Errorf("invalid pull request number %q in %s", parts[3], raw)
	}
	return parts[0], parts[1], number, nil
}
