package core

// RepoConfig represents the structure of the .redline.yml file a repository
// may carry to tune its own reviews.
type RepoConfig struct {
	// Custom instructions appended to every role prompt.
	CustomInstructions []string `yaml:"custom_instructions"`

	// High-performance exclusion of entire directories by name.
	// Example: ["dist", "build", "docs"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Exclusion of files based on their extension.
	// The leading dot is optional. Example: [".md", "lock", ".log"]
	ExcludeExts []string `yaml:"exclude_exts"`

	// Roles to run. Empty means all built-in roles.
	Roles []string `yaml:"roles"`

	// Issues below this severity are dropped from the report.
	MinSeverity string `yaml:"min_severity"`

	// Issues below this confidence are dropped from the report.
	MinConfidence float64 `yaml:"min_confidence"`

	// Per-capability uncached call budget for each role and file.
	// Zero means the built-in default.
	ToolBudget int `yaml:"tool_budget"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		CustomInstructions: []string{},
		ExcludeDirs:        []string{},
		ExcludeExts:        []string{},
		Roles:              []string{},
		MinConfidence:      0.5,
	}
}

// EnabledRoles resolves the configured role names against the built-in set.
// Unknown names are ignored; an empty or fully unknown list falls back to all
// roles.
func (c *RepoConfig) EnabledRoles() []Role {
	if c == nil || len(c.Roles) == 0 {
		return AllRoles
	}
	var roles []Role
	for _, raw := range c.Roles {
		if role, ok := ParseRole(raw); ok {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return AllRoles
	}
	return roles
}
