package identity

import "strings"

// Role is a closed enum. "Owner" is the platform superuser and is a
// different role from "Org Owner", the tenant-level administrator; the two
// must never be compared by raw string.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleOwner      Role = "Owner"
	RoleOrgOwner   Role = "Org Owner"
	RoleContractor Role = "Contractor"
	RoleUnset      Role = ""
)

// ParseRole maps a stored role string to the enum. Anything unknown,
// including the empty string, resolves to RoleUnset.
func ParseRole(s string) Role {
	switch strings.TrimSpace(s) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleOwner):
		return RoleOwner
	case string(RoleOrgOwner):
		return RoleOrgOwner
	case string(RoleContractor):
		return RoleContractor
	default:
		return RoleUnset
	}
}

// SignupRoles are the roles a user may pick at registration. Admin and
// Owner are assigned out of band.
func SignupRoles() []Role {
	return []Role{RoleContractor, RoleOrgOwner}
}

func IsSignupRole(r Role) bool {
	return r == RoleContractor || r == RoleOrgOwner
}
