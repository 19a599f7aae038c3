package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zaroda/school-backend/internal/models"
)

func TestDashboardForIsTotal(t *testing.T) {
	want := map[models.Role]string{
		models.RoleSuperAdmin: "/superadmin/dashboard",
		models.RoleTeacher:    "/teacher/dashboard",
		models.RoleHOI:        "/hoi/dashboard",
		models.RoleDHOI:       "/dhoi/dashboard",
		models.RoleStudent:    "/student/dashboard",
		models.RoleParent:     "/parent/dashboard",
	}
	for _, role := range models.AllRoles {
		assert.Equal(t, want[role], DashboardFor(role), role)
	}
	assert.Equal(t, LoginRoute, DashboardFor("janitor"))
}

func TestGuard(t *testing.T) {
	teacher := &models.AuthUser{ID: "1", Email: "t@x.com", Role: models.RoleTeacher}
	tests := []struct {
		name     string
		user     *models.AuthUser
		loading  bool
		required models.Role
		want     GuardDecision
	}{
		{"pending while loading", teacher, true, models.RoleTeacher, GuardDecision{Outcome: GuardPending}},
		{"no session", nil, false, models.RoleHOI, GuardDecision{Outcome: GuardRedirect, Location: "/login"}},
		{"wrong role goes to own dashboard", teacher, false, models.RoleHOI, GuardDecision{Outcome: GuardRedirect, Location: "/teacher/dashboard"}},
		{"matching role", teacher, false, models.RoleTeacher, GuardDecision{Outcome: GuardAllow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.user, tt.loading, tt.required))
		})
	}
}
