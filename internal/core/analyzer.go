package core

import "context"

// RoleInput is everything one analysis role sees for one file: the diff
// fragment, a role-tailored view of the enriched context, and any supporting
// lookups the pipeline already performed on the role's behalf.
type RoleInput struct {
	FilePath           string
	Language           string
	Diff               string
	ContextSummary     string
	RelatedSnippets    []SearchHit
	CustomInstructions []string
}

// Analyzer is the LLM-backed analysis collaborator. It must return an empty
// slice rather than an error when it finds nothing, and tag every issue
// with a severity and a confidence in [0,1]; the pipeline defaults missing
// values but does not rely on that.
type Analyzer interface {
	AnalyzeRole(ctx context.Context, role Role, input RoleInput) ([]ReviewIssue, error)
}
