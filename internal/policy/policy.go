// AngelaMos | 2026
// policy.go

package policy

// Role is the three-tier privilege level attached to every account.
// The hierarchy is strict: RoleUser < RoleAdmin < RoleSuperAdmin.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) tier() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// Scope is the subset of visitor records an identity may see. ScopeAll has
// no restriction; otherwise visibility is limited to AgentID.
type Scope struct {
	All     bool
	AgentID string
}

func ScopeAll() Scope {
	return Scope{All: true}
}

func ScopeOwn(agentID string) Scope {
	return Scope{AgentID: agentID}
}

// CanManageUsers reports whether the role may use the user-administration
// endpoints at all.
func CanManageUsers(role Role) bool {
	return role.tier() >= RoleAdmin.tier()
}

// CanManageUserRecord reports whether an actor may create, modify, or
// deactivate an account holding targetRole. Super-admin accounts are only
// touchable by another super admin; the self-deactivation rule is enforced
// at the call site where both IDs are known.
func CanManageUserRecord(actorRole, targetRole Role) bool {
	if !CanManageUsers(actorRole) {
		return false
	}
	return targetRole.tier() <= actorRole.tier()
}

// CanAssignRole reports whether an actor may grant targetRole to an account.
// Promotion to super_admin is reserved to super admins.
func CanAssignRole(actorRole, targetRole Role) bool {
	return CanManageUserRecord(actorRole, targetRole)
}

// VisibilityScope returns the mandatory visitor-visibility predicate for an
// identity: plain users see only leads captured by their linked agent,
// admins and super admins see everything.
func VisibilityScope(role Role, agentID string) Scope {
	if role == RoleUser {
		return ScopeOwn(agentID)
	}
	return ScopeAll()
}

// CanDeleteVisitor reports whether the role may delete leads. Plain users
// capture and annotate but never delete.
func CanDeleteVisitor(role Role) bool {
	return role.tier() >= RoleAdmin.tier()
}
