package auth

import (
	"errors"

	"github.com/yigit/visitportal/internal/app/models"
)

// Common authorization errors
var (
	ErrNotAdmin         = errors.New("only administrators can perform this action")
	ErrNotStaff         = errors.New("only faculty and administrators can perform this action")
	ErrPermissionDenied = errors.New("you don't have permission for this action")
	ErrInvalidRole      = errors.New("invalid user type")
	ErrLastSuperAdmin   = errors.New("cannot change role: this is the last superadmin user")
	ErrDeleteSuperAdmin = errors.New("superadmin users cannot be deleted")
)

// rank orders the roles; a higher rank satisfies every lower requirement
var rank = map[models.Role]int{
	models.RoleCandidate:  1,
	models.RoleFaculty:    2,
	models.RoleAdmin:      3,
	models.RoleSuperAdmin: 4,
}

// RoleSet is the set of role flags held by the current identity
type RoleSet uint8

const (
	flagCandidate RoleSet = 1 << iota
	flagFaculty
	flagAdmin
	flagSuperAdmin
)

func flagOf(r models.Role) RoleSet {
	switch r {
	case models.RoleCandidate:
		return flagCandidate
	case models.RoleFaculty:
		return flagFaculty
	case models.RoleAdmin:
		return flagAdmin
	case models.RoleSuperAdmin:
		return flagSuperAdmin
	}
	return 0
}

// NewRoleSet builds a set out of the given roles, ignoring unknown ones
func NewRoleSet(roles ...models.Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= flagOf(r)
	}
	return s
}

// RolesOf derives the role flags of a user. Superadmins also carry the admin flag.
func RolesOf(u *models.User) RoleSet {
	if u == nil {
		return 0
	}
	s := NewRoleSet(u.UserType)
	if u.UserType == models.RoleSuperAdmin {
		s |= flagAdmin
	}
	return s
}

// Has reports whether r is in the set
func (s RoleSet) Has(r models.Role) bool {
	f := flagOf(r)
	return f != 0 && s&f != 0
}

// Empty reports whether no role is held
func (s RoleSet) Empty() bool { return s == 0 }

// Roles lists the roles in the set from lowest to highest
func (s RoleSet) Roles() []models.Role {
	var out []models.Role
	for _, r := range models.Roles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// SatisfiedBy lists every role that meets the required role: the role itself and all above it.
// Unknown requirements are satisfied by nothing.
func SatisfiedBy(required models.Role) RoleSet {
	need, ok := rank[required]
	if !ok {
		return 0
	}
	var s RoleSet
	for role, r := range rank {
		if r >= need {
			s |= flagOf(role)
		}
	}
	return s
}

// Satisfies reports whether any held role meets the required role under the hierarchy
// candidate < faculty < admin < superadmin.
func Satisfies(held RoleSet, required models.Role) bool {
	return held&SatisfiedBy(required) != 0
}

// RequireAdmin validates that the user is an admin or returns ErrNotAdmin
func RequireAdmin(u *models.User) error {
	if !Satisfies(RolesOf(u), models.RoleAdmin) {
		return ErrNotAdmin
	}
	return nil
}

// RequireStaff validates that the user is faculty or above
func RequireStaff(u *models.User) error {
	if !Satisfies(RolesOf(u), models.RoleFaculty) {
		return ErrNotStaff
	}
	return nil
}

// CanChangeRole checks a role change of target to raw. Only superadmins change
// roles; a superadmin may only demote themselves, and never the last one.
func CanChangeRole(actor, target *models.User, raw string, superadmins int) (models.Role, error) {
	if !actor.IsSuperAdmin() {
		return "", ErrPermissionDenied
	}
	to, ok := models.ParseRole(raw)
	if !ok {
		return "", ErrInvalidRole
	}
	if target.IsSuperAdmin() {
		if superadmins <= 1 && to != models.RoleSuperAdmin {
			return "", ErrLastSuperAdmin
		}
		if target.ID != actor.ID {
			return "", ErrPermissionDenied
		}
	}
	return to, nil
}

// CanDeleteUser checks that actor may delete target. Only superadmins delete,
// and superadmins themselves, the actor included, are never deleted.
func CanDeleteUser(actor, target *models.User) error {
	switch {
	case !actor.IsSuperAdmin():
		return ErrPermissionDenied
	case target.IsSuperAdmin():
		return ErrDeleteSuperAdmin
	}
	return nil
}

// VisibleUsers filters a user listing the way the API scopes it: admins do
// not see superadmins.
func VisibleUsers(actor *models.User, users []models.User) []models.User {
	if actor.IsSuperAdmin() {
		return users
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if !u.IsSuperAdmin() {
			out = append(out, u)
		}
	}
	return out
}
