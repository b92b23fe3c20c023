package repomanager

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
)

const maxCollectionNameLength = 255

var collectionNameRegexp = regexp.MustCompile("[^a-z0-9_-]+")

var errRepoNameDetection = errors.New("cannot detect repo name from remotes")

// repoFullNameFromRemotes extracts "owner/repo" from any remote URL,
// preferring the first remote with a parseable URL.
func repoFullNameFromRemotes(repo *git.Repository) (string, error) {
	remotes, err := repo.Remotes()
	if err != nil {
		return "", err
	}
	for _, r := range remotes {
		if len(r.Config().URLs) == 0 {
			continue
		}
		if name, ok := parseRemoteURL(r.Config().URLs[0]); ok {
			return name, nil
		}
	}
	return "", errRepoNameDetection
}

func parseRemoteURL(raw string) (string, bool) {
	// HTTPS: https://github.com/owner/repo.git
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		name := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/"), ".git")
		if name != "" {
			return name, true
		}
	}
	// SSH: git@github.com:owner/repo.git
	if strings.Contains(raw, "@") && strings.Contains(raw, ":") {
		parts := strings.SplitN(raw, ":", 2)
		if len(parts) == 2 && parts[1] != "" {
			return strings.TrimSuffix(parts[1], ".git"), true
		}
	}
	return "", false
}

// GenerateCollectionName builds a valid vector store collection name from the
// repository and embedder model names. Vectors from different embedders never
// share a collection.
func GenerateCollectionName(repoFullName, embedderModel string) string {
	safeRepo := strings.ToLower(strings.ReplaceAll(repoFullName, "/", "-"))
	safeEmbed := strings.ToLower(strings.Split(embedderModel, ":")[0])

	safeRepo = collectionNameRegexp.ReplaceAllString(safeRepo, "")
	safeEmbed = collectionNameRegexp.ReplaceAllString(safeEmbed, "")

	name := "repo-" + safeRepo + "-" + safeEmbed
	if len(name) > maxCollectionNameLength {
		return name[:maxCollectionNameLength]
	}
	return name
}
