package models

import "strings"

// User is the identity returned by the scheduling API (users/me, google_login, register)
type User struct {
	ID                   int64   `json:"id" example:"7"`                                  // Unique identifier for the user
	Email                string  `json:"email" example:"jane.doe@university.edu"`         // User's email address
	Username             string  `json:"username,omitempty" example:"jane.doe"`           // Username, usually the email
	FirstName            string  `json:"first_name" example:"Jane"`                       // User's first name
	LastName             string  `json:"last_name" example:"Doe"`                         // User's last name
	UserType             Role    `json:"user_type" example:"faculty"`                     // candidate, faculty, admin or superadmin
	RoomNumber           *string `json:"room_number,omitempty" example:"ENG 204"`         // Office location (nullable)
	HasCompletedSetup    bool    `json:"has_completed_setup" example:"true"`              // Whether the setup flow was completed
	AvailableForMeetings bool    `json:"available_for_meetings,omitempty" example:"true"` // Whether candidates may request this user
}

// FullName joins first and last name, falling back to the email
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Room returns the room number or an empty string
func (u *User) Room() string {
	if u == nil || u.RoomNumber == nil {
		return ""
	}
	return *u.RoomNumber
}

// IsCandidate reports whether the user is a candidate
func (u *User) IsCandidate() bool { return u != nil && u.UserType == RoleCandidate }

// IsFaculty reports whether the user is a faculty member
func (u *User) IsFaculty() bool { return u != nil && u.UserType == RoleFaculty }

// IsAdmin reports whether the user has admin privileges (admin or superadmin)
func (u *User) IsAdmin() bool {
	return u != nil && (u.UserType == RoleAdmin || u.UserType == RoleSuperAdmin)
}

// IsSuperAdmin reports whether the user is a superadmin
func (u *User) IsSuperAdmin() bool { return u != nil && u.UserType == RoleSuperAdmin }

// NeedsCandidateSetup reports whether a candidate still has to fill the candidate form
func (u *User) NeedsCandidateSetup() bool {
	return u.IsCandidate() && !u.HasCompletedSetup
}

// NeedsRoomSetup reports whether staff still has to provide a room number
func (u *User) NeedsRoomSetup() bool {
	if u == nil || u.HasCompletedSetup {
		return false
	}
	switch u.UserType {
	case RoleFaculty, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
