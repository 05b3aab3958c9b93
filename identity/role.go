package identity

// Role is a canonical role name.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleBranch      Role = "branch"
	RoleClientAdmin Role = "client_admin"
	RoleParent      Role = "parent"
	RoleStaff       Role = "staff"
)

// legacyClientRole is still issued by older tokens for client administrators.
const legacyClientRole = "client"

var allRoles = []Role{
	RoleSuperAdmin,
	RoleBranch,
	RoleClientAdmin,
	RoleParent,
	RoleStaff,
}

// AllRoles returns the known roles in declaration order.
func AllRoles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// Known reports whether r is one of the roles in [AllRoles].
func (r Role) Known() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// CanonicalRole maps a raw role claim onto its canonical value. The only alias is
// "client", which becomes [RoleClientAdmin].
func CanonicalRole(raw string) Role {
	if raw == legacyClientRole {
		return RoleClientAdmin
	}
	return Role(raw)
}
