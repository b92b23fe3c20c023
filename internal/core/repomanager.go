package core

// UpdateResult contains the lists of files that changed between the last
// indexed commit and HEAD, used to keep the search index current.
type UpdateResult struct {
	FilesToAddOrUpdate []string
	FilesToDelete      []string
	RepoPath           string
	RepoFullName       string
	HeadSHA            string
	IsInitialClone     bool
}
