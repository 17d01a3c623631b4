package auth

import (
	"testing"

	"github.com/yigit/visitportal/internal/app/models"
)

func TestSatisfiesAllRoleCombinations(t *testing.T) {
	required := []models.Role{
		models.RoleCandidate,
		models.RoleFaculty,
		models.RoleAdmin,
		models.RoleSuperAdmin,
		models.Role("janitor"),
	}
	level := map[models.Role]int{
		models.RoleCandidate:  1,
		models.RoleFaculty:    2,
		models.RoleAdmin:      3,
		models.RoleSuperAdmin: 4,
	}

	// every subset of the four known roles
	for mask := 0; mask < 1<<len(models.Roles); mask++ {
		var held []models.Role
		for i, r := range models.Roles {
			if mask&(1<<i) != 0 {
				held = append(held, r)
			}
		}
		set := NewRoleSet(held...)

		for _, req := range required {
			want := false
			if need, known := level[req]; known {
				for _, r := range held {
					if level[r] >= need {
						want = true
					}
				}
			}
			if got := Satisfies(set, req); got != want {
				t.Errorf("Satisfies(%v, %q) = %v, want %v", held, req, got, want)
			}
		}
	}
}

func TestUnknownRequirementAlwaysDenies(t *testing.T) {
	all := NewRoleSet(models.Roles...)
	if Satisfies(all, "") {
		t.Fatal("empty requirement must deny")
	}
	if Satisfies(all, "owner") {
		t.Fatal("unknown requirement must deny")
	}
}

func TestRolesOf(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want []models.Role
	}{
		{"nil user", nil, nil},
		{"candidate", &models.User{UserType: models.RoleCandidate}, []models.Role{models.RoleCandidate}},
		{"faculty", &models.User{UserType: models.RoleFaculty}, []models.Role{models.RoleFaculty}},
		{"superadmin carries admin", &models.User{UserType: models.RoleSuperAdmin}, []models.Role{models.RoleAdmin, models.RoleSuperAdmin}},
		{"unknown type", &models.User{UserType: "visitor"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RolesOf(tt.user).Roles()
			if len(got) != len(tt.want) {
				t.Fatalf("RolesOf() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("RolesOf() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(&models.User{UserType: models.RoleFaculty}); err != ErrNotAdmin {
		t.Fatalf("faculty: got %v, want ErrNotAdmin", err)
	}
	if err := RequireAdmin(&models.User{UserType: models.RoleSuperAdmin}); err != nil {
		t.Fatalf("superadmin: unexpected error %v", err)
	}
	if err := RequireStaff(&models.User{UserType: models.RoleCandidate}); err != ErrNotStaff {
		t.Fatalf("candidate: got %v, want ErrNotStaff", err)
	}
}

func TestCanChangeRole(t *testing.T) {
	super := &models.User{ID: 1, UserType: models.RoleSuperAdmin}
	other := &models.User{ID: 2, UserType: models.RoleSuperAdmin}
	admin := &models.User{ID: 3, UserType: models.RoleAdmin}
	faculty := &models.User{ID: 4, UserType: models.RoleFaculty}

	tests := []struct {
		name        string
		actor       *models.User
		target      *models.User
		to          string
		superadmins int
		want        models.Role
		err         error
	}{
		{"superadmin promotes faculty", super, faculty, "admin", 1, models.RoleAdmin, nil},
		{"admin cannot change roles", admin, faculty, "admin", 1, "", ErrPermissionDenied},
		{"unknown role", super, faculty, "janitor", 1, "", ErrInvalidRole},
		{"last superadmin stays", super, super, "faculty", 1, "", ErrLastSuperAdmin},
		{"superadmin demotes self", super, super, "admin", 2, models.RoleAdmin, nil},
		{"another superadmin is off limits", super, other, "admin", 2, "", ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanChangeRole(tt.actor, tt.target, tt.to, tt.superadmins)
			if err != tt.err || got != tt.want {
				t.Fatalf("CanChangeRole() = %q, %v; want %q, %v", got, err, tt.want, tt.err)
			}
		})
	}
}

func TestCanDeleteUser(t *testing.T) {
	super := &models.User{ID: 1, UserType: models.RoleSuperAdmin}
	tests := []struct {
		name   string
		actor  *models.User
		target *models.User
		err    error
	}{
		{"superadmin deletes candidate", super, &models.User{ID: 9, UserType: models.RoleCandidate}, nil},
		{"admin cannot delete", &models.User{ID: 2, UserType: models.RoleAdmin}, &models.User{ID: 9}, ErrPermissionDenied},
		{"superadmins are kept", super, &models.User{ID: 5, UserType: models.RoleSuperAdmin}, ErrDeleteSuperAdmin},
		{"not even themselves", super, super, ErrDeleteSuperAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanDeleteUser(tt.actor, tt.target); err != tt.err {
				t.Fatalf("CanDeleteUser() = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestVisibleUsersHidesSuperadminsFromAdmins(t *testing.T) {
	users := []models.User{
		{ID: 1, UserType: models.RoleSuperAdmin},
		{ID: 2, UserType: models.RoleAdmin},
		{ID: 3, UserType: models.RoleCandidate},
	}
	if got := VisibleUsers(&models.User{UserType: models.RoleAdmin}, users); len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("admin sees %v", got)
	}
	if got := VisibleUsers(&models.User{UserType: models.RoleSuperAdmin}, users); len(got) != 3 {
		t.Fatalf("superadmin sees %v", got)
	}
}
