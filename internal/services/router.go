package services

import "github.com/zaroda/school-backend/internal/models"

const LoginRoute = "/login"

var dashboards = map[models.Role]string{
	models.RoleSuperAdmin: "/superadmin/dashboard",
	models.RoleTeacher:    "/teacher/dashboard",
	models.RoleHOI:        "/hoi/dashboard",
	models.RoleDHOI:       "/dhoi/dashboard",
	models.RoleStudent:    "/student/dashboard",
	models.RoleParent:     "/parent/dashboard",
}

// DashboardFor maps a role to its landing route.
func DashboardFor(role models.Role) string {
	if route, ok := dashboards[role]; ok {
		return route
	}
	return LoginRoute
}

type GuardOutcome int

const (
	GuardAllow GuardOutcome = iota
	GuardPending
	GuardRedirect
)

// GuardDecision is the result of checking a route against the session.
// Location is set only for GuardRedirect.
type GuardDecision struct {
	Outcome  GuardOutcome
	Location string
}

// Guard decides access to a route reserved for required. Users with another
// role are sent to their own dashboard rather than refused.
func Guard(user *models.AuthUser, loading bool, required models.Role) GuardDecision {
	if loading {
		return GuardDecision{Outcome: GuardPending}
	}
	if user == nil {
		return GuardDecision{Outcome: GuardRedirect, Location: LoginRoute}
	}
	if user.Role != required {
		return GuardDecision{Outcome: GuardRedirect, Location: DashboardFor(user.Role)}
	}
	return GuardDecision{Outcome: GuardAllow}
}
