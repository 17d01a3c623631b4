package models

// Role is the closed set of user types the scheduling API knows about
type Role string

const (
	RoleCandidate  Role = "candidate"
	RoleFaculty    Role = "faculty"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Roles lists every known role from lowest to highest privilege
var Roles = []Role{RoleCandidate, RoleFaculty, RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleFaculty, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw user_type string into a Role
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Label returns the human readable name of the role
func (r Role) Label() string {
	switch r {
	case RoleCandidate:
		return "Candidate"
	case RoleFaculty:
		return "Faculty"
	case RoleAdmin:
		return "Admin"
	case RoleSuperAdmin:
		return "Super Admin"
	default:
		return string(r)
	}
}
