package core

// Relationship positions a dependency node relative to the file under review.
type Relationship string

const (
	RelationshipSelf       Relationship = "self"
	RelationshipUpstream   Relationship = "upstream"
	RelationshipDownstream Relationship = "downstream"
)

// DependencyNode is one file discovered during dependency traversal.
// Nodes are rebuilt on every run; nothing about the graph is persisted.
type DependencyNode struct {
	FilePath     string       `json:"file_path"`
	Imports      []string     `json:"imports,omitempty"`
	Exports      []string     `json:"exports,omitempty"`
	Depth        int          `json:"depth"`
	Relationship Relationship `json:"relationship"`
}

// TestFile associates a discovered test file with the source file it covers.
type TestFile struct {
	FilePath    string   `json:"file_path"`
	RelatedFile string   `json:"related_file"`
	TestNames   []string `json:"test_names,omitempty"`
}

// EnrichedContext aggregates everything the resolver learned about one
// reviewed file. It is built once before analysis starts and is shared
// read-only across every role reviewing that file.
type EnrichedContext struct {
	FilePath   string           `json:"file_path"`
	Upstream   []DependencyNode `json:"upstream,omitempty"`
	Downstream []DependencyNode `json:"downstream,omitempty"`
	Tests      []TestFile       `json:"tests,omitempty"`
}

// SearchHit is one result from the semantic code-search backend.
type SearchHit struct {
	Repo     string  `json:"repo,omitempty"`
	FilePath string  `json:"file_path"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
}
