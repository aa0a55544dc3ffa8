package domain

import "fmt"

// Role enumerates the operator roles a user can hold.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleAgent      Role = "AGENT"
)

// Roles lists every role in privilege order.
var Roles = []Role{RoleAdmin, RoleSupervisor, RoleAgent}

// ParseRole converts a wire value into a Role.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleSupervisor, RoleAgent:
		return Role(value), nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// CanAssign reports whether a holder of r may assign a case to a user holding target.
//
// ADMIN may assign to SUPERVISOR and AGENT, SUPERVISOR only to AGENT. AGENT never assigns.
func (r Role) CanAssign(target Role) bool {
	switch r {
	case RoleAdmin:
		return target == RoleSupervisor || target == RoleAgent
	case RoleSupervisor:
		return target == RoleAgent
	case RoleAgent:
		return false
	default:
		return false
	}
}

// AssignableRoles returns the target roles r may assign to.
func (r Role) AssignableRoles() []Role {
	var out []Role
	for _, target := range Roles {
		if r.CanAssign(target) {
			out = append(out, target)
		}
	}
	return out
}

// SeesAllCases reports whether r bypasses assignee scoping when reading cases.
func (r Role) SeesAllCases() bool {
	switch r {
	case RoleAdmin, RoleSupervisor:
		return true
	default:
		return false
	}
}
