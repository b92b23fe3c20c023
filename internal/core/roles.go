package core

import "strings"

// Role is one independent analysis perspective applied to every reviewable
// file. Roles run concurrently with each other during a review.
type Role string

const (
	RoleSecurity    Role = "security"
	RolePerformance Role = "performance"
	RoleLogic       Role = "logic"
)

// AllRoles lists the built-in roles in synthesis order. The merged issue
// stream is concatenated role-major in exactly this order.
var AllRoles = []Role{RoleSecurity, RolePerformance, RoleLogic}

// ParseRole normalizes a role name from config or CLI flags.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return r, false
}
