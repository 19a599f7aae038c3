package models

import (
	"strings"
	"time"
)

// Role is one of the six platform role tags.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleTeacher    Role = "teacher"
	RoleHOI        Role = "hoi"
	RoleDHOI       Role = "dhoi"
	RoleStudent    Role = "student"
	RoleParent     Role = "parent"
)

var AllRoles = []Role{RoleSuperAdmin, RoleTeacher, RoleHOI, RoleDHOI, RoleStudent, RoleParent}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// AccountStatus gates login eligibility for directory accounts.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusInactive  AccountStatus = "inactive"
	StatusSuspended AccountStatus = "suspended"
)

func (s AccountStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusSuspended
}

// AuthUser is the identity held by a session.
type AuthUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Role       Role   `json:"role"`
	SchoolCode string `json:"schoolCode"`
	Phone      string `json:"phone,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Grade      string `json:"grade,omitempty"`
}

// Complete reports whether every mandatory identity field is populated.
func (u AuthUser) Complete() bool {
	return u.ID != "" && u.Email != "" && u.Role.Valid()
}

// PlatformUserRecord is a directory entry for teacher/hoi/dhoi/student/parent accounts.
type PlatformUserRecord struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	FullName   string        `json:"fullName"`
	Role       Role          `json:"role"`
	SchoolCode string        `json:"schoolCode"`
	Phone      string        `json:"phone,omitempty"`
	Subject    string        `json:"subject,omitempty"`
	Grade      string        `json:"grade,omitempty"`
	Status     AccountStatus `json:"status"`
	CreatedBy  string        `json:"createdBy"`
	CreatedAt  time.Time     `json:"createdAt"`
	LastLogin  *time.Time    `json:"lastLogin,omitempty"`
}

func (r *PlatformUserRecord) GetID() string   { return r.ID }
func (r *PlatformUserRecord) SetID(id string) { r.ID = id }

// AuthUser projects the directory record onto a session identity.
func (r PlatformUserRecord) AuthUser() AuthUser {
	return AuthUser{
		ID:         r.ID,
		Email:      r.Email,
		FullName:   r.FullName,
		Role:       r.Role,
		SchoolCode: r.SchoolCode,
		Phone:      r.Phone,
		Subject:    r.Subject,
		Grade:      r.Grade,
	}
}

// NormalizeEmail trims and lower-cases an email for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
