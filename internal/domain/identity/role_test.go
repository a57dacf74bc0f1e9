package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("Admin"))
	assert.Equal(t, RoleOwner, ParseRole("Owner"))
	assert.Equal(t, RoleOrgOwner, ParseRole("Org Owner"))
	assert.Equal(t, RoleContractor, ParseRole("Contractor"))

	// Whitespace tolerated, casing not.
	assert.Equal(t, RoleContractor, ParseRole("  Contractor "))
	assert.Equal(t, RoleUnset, ParseRole("contractor"))

	assert.Equal(t, RoleUnset, ParseRole(""))
	assert.Equal(t, RoleUnset, ParseRole("superuser"))
}

func TestOwnerAndOrgOwnerAreDistinct(t *testing.T) {
	// The platform superuser and the tenant administrator share a word but
	// never a role.
	assert.NotEqual(t, RoleOwner, RoleOrgOwner)
	assert.NotEqual(t, ParseRole("Owner"), ParseRole("Org Owner"))

	assert.False(t, IsSignupRole(RoleOwner))
	assert.True(t, IsSignupRole(RoleOrgOwner))
}

func TestSignupRoles(t *testing.T) {
	roles := SignupRoles()
	assert.ElementsMatch(t, []Role{RoleContractor, RoleOrgOwner}, roles)

	assert.False(t, IsSignupRole(RoleAdmin))
	assert.False(t, IsSignupRole(RoleUnset))
}
