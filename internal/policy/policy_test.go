// AngelaMos | 2026
// policy_test.go

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanManageUsers(t *testing.T) {
	t.Parallel()

	assert.False(t, CanManageUsers(RoleUser))
	assert.True(t, CanManageUsers(RoleAdmin))
	assert.True(t, CanManageUsers(RoleSuperAdmin))
	assert.False(t, CanManageUsers(Role("intern")))
}

func TestCanManageUserRecord(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		actor  Role
		target Role
		want   bool
	}{
		{"user cannot manage anyone", RoleUser, RoleUser, false},
		{"admin manages user", RoleAdmin, RoleUser, true},
		{"admin manages admin", RoleAdmin, RoleAdmin, true},
		{"admin cannot touch super admin", RoleAdmin, RoleSuperAdmin, false},
		{"super admin manages user", RoleSuperAdmin, RoleUser, true},
		{"super admin manages admin", RoleSuperAdmin, RoleAdmin, true},
		{"super admin manages super admin", RoleSuperAdmin, RoleSuperAdmin, true},
		{"unknown actor denied", Role(""), RoleUser, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CanManageUserRecord(tc.actor, tc.target))
		})
	}
}

func TestCanAssignRole_SuperAdminPromotion(t *testing.T) {
	t.Parallel()

	assert.False(t, CanAssignRole(RoleAdmin, RoleSuperAdmin))
	assert.True(t, CanAssignRole(RoleSuperAdmin, RoleSuperAdmin))
	assert.True(t, CanAssignRole(RoleAdmin, RoleAdmin))
	assert.False(t, CanAssignRole(RoleUser, RoleUser))
}

func TestVisibilityScope(t *testing.T) {
	t.Parallel()

	own := VisibilityScope(RoleUser, "agent-7")
	assert.False(t, own.All)
	assert.Equal(t, "agent-7", own.AgentID)

	for _, role := range []Role{RoleAdmin, RoleSuperAdmin} {
		scope := VisibilityScope(role, "agent-7")
		assert.True(t, scope.All)
	}
}

func TestCanDeleteVisitor(t *testing.T) {
	t.Parallel()

	assert.False(t, CanDeleteVisitor(RoleUser))
	assert.True(t, CanDeleteVisitor(RoleAdmin))
	assert.True(t, CanDeleteVisitor(RoleSuperAdmin))
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Role("user").Valid())
	assert.True(t, Role("admin").Valid())
	assert.True(t, Role("super_admin").Valid())
	assert.False(t, Role("root").Valid())
	assert.False(t, Role("").Valid())
}
