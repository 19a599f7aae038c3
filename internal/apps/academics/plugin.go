package academics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/apps"
	"github.com/zaroda/school-backend/internal/middleware"
	"github.com/zaroda/school-backend/internal/models"
)

type AcademicsPlugin struct{}

func New() *AcademicsPlugin {
	return &AcademicsPlugin{}
}

func (p *AcademicsPlugin) ID() string { return "academics" }

func (p *AcademicsPlugin) KeyPrefixes() []string {
	return []string{"students", "attendance", "subject_assignments"}
}

func (p *AcademicsPlugin) RegisterRoutes(router fiber.Router, deps apps.Deps) {
	handler := NewAcademicsHandler(
		NewStudentRoster(deps.Store),
		NewAttendanceLedger(deps.Store),
		NewSubjectAssignments(deps.Store),
	)
	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleHOI, models.RoleDHOI, models.RoleTeacher)
	management := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleHOI, models.RoleDHOI)

	g := router.Group("/academics",
		middleware.RequireFeature(deps.Schools, p.ID()),
		staff,
		middleware.PauseWritesDuringMaintenance(deps.Settings),
	)

	// Students
	g.Get("/students", handler.ListStudents)
	g.Post("/students", management, handler.AddStudent)
	g.Put("/students/:id", management, handler.UpdateStudent)
	g.Post("/students/:id/transfer", management, handler.TransferStudent)

	// Attendance
	g.Get("/attendance", handler.GetAttendance)
	g.Get("/attendance/summary", handler.AttendanceSummary)
	g.Put("/attendance", handler.SaveAttendance)

	// Subject assignments
	g.Get("/assignments", handler.ListAssignments)
	g.Post("/assignments", management, handler.AssignSubject)
	g.Put("/assignments/:id", management, handler.UpdateAssignment)
	g.Delete("/assignments/:id", management, handler.RemoveAssignment)
}

var _ apps.Plugin = (*AcademicsPlugin)(nil)
