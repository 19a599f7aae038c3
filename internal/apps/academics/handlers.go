package academics

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/tenant"
)

type AcademicsHandler struct {
	roster      *StudentRoster
	ledger      *AttendanceLedger
	assignments *SubjectAssignments
}

func NewAcademicsHandler(roster *StudentRoster, ledger *AttendanceLedger, assignments *SubjectAssignments) *AcademicsHandler {
	return &AcademicsHandler{roster: roster, ledger: ledger, assignments: assignments}
}

func (h *AcademicsHandler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrStudentNotFound), errors.Is(err, ErrAssignmentNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrDuplicateAdmission), errors.Is(err, ErrAssignmentExists):
		status = fiber.StatusConflict
	case errors.Is(err, ErrInvalidStudent), errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidMark),
		errors.Is(err, ErrUnknownStudent), errors.Is(err, ErrInvalidClass), errors.Is(err, ErrInvalidAssignment):
		status = fiber.StatusBadRequest
	}
	if status == fiber.StatusInternalServerError {
		slog.Error("academics request failed", "path", c.Path(), "school_code", tenant.GetSchoolCode(c), "error", err)
		return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: "Internal server error"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
}

func (h *AcademicsHandler) ListStudents(c *fiber.Ctx) error {
	students, err := h.roster.List(c.UserContext(), tenant.GetSchoolCode(c), StudentFilter{
		ClassID:            c.Query("class"),
		StreamID:           c.Query("stream"),
		IncludeTransferred: c.QueryBool("include_transferred", false),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"students": students, "count": len(students)})
}

func (h *AcademicsHandler) AddStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	student, err := h.roster.Add(c.UserContext(), tenant.GetSchoolCode(c), models.Student{
		FullName:    req.FullName,
		ClassID:     req.ClassID,
		StreamID:    req.StreamID,
		AdmissionNo: req.AdmissionNo,
		Gender:      req.Gender,
		ParentPhone: req.ParentPhone,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(student)
}

func (h *AcademicsHandler) UpdateStudent(c *fiber.Ctx) error {
	var patch StudentPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, errors.New("Invalid request body"))
	}
	student, err := h.roster.Update(c.UserContext(), tenant.GetSchoolCode(c), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(student)
}

func (h *AcademicsHandler) TransferStudent(c *fiber.Ctx) error {
	student, err := h.roster.Transfer(c.UserContext(), tenant.GetSchoolCode(c), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(student)
}

func (h *AcademicsHandler) GetAttendance(c *fiber.Ctx) error {
	records, err := h.ledger.ForDay(c.UserContext(), tenant.GetSchoolCode(c), c.Query("class"), c.Query("stream"), c.Query("date"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"records": records, "count": len(records)})
}

func (h *AcademicsHandler) SaveAttendance(c *fiber.Ctx) error {
	var req SaveAttendanceRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	markedBy, _ := tenant.GetUserID(c)
	records, err := h.ledger.Save(c.UserContext(), tenant.GetSchoolCode(c), req.ClassID, req.StreamID, req.Date, req.Marks, markedBy)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"records": records, "count": len(records)})
}

func (h *AcademicsHandler) AttendanceSummary(c *fiber.Ctx) error {
	summary, err := h.ledger.Summary(c.UserContext(), tenant.GetSchoolCode(c), c.Query("class"), c.Query("stream"), c.Query("date"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(summary)
}

func (h *AcademicsHandler) ListAssignments(c *fiber.Ctx) error {
	filter := AssignmentFilter{
		TeacherID: c.Query("teacher"),
		ClassID:   c.Query("class"),
		StreamID:  c.Query("stream"),
		Subject:   c.Query("subject"),
	}
	// teachers only see their own load
	if tenant.GetRole(c) == string(models.RoleTeacher) {
		filter.TeacherID, _ = tenant.GetUserID(c)
	}
	assignments, err := h.assignments.List(c.UserContext(), tenant.GetSchoolCode(c), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"assignments": assignments, "count": len(assignments)})
}

func (h *AcademicsHandler) AssignSubject(c *fiber.Ctx) error {
	var req AssignSubjectRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	assignment, err := h.assignments.Assign(c.UserContext(), tenant.GetSchoolCode(c), models.SubjectAssignment{
		TeacherID:    req.TeacherID,
		TeacherEmail: req.TeacherEmail,
		Subject:      req.Subject,
		ClassID:      req.ClassID,
		StreamID:     req.StreamID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(assignment)
}

func (h *AcademicsHandler) UpdateAssignment(c *fiber.Ctx) error {
	var patch AssignmentPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, errors.New("Invalid request body"))
	}
	assignment, err := h.assignments.Update(c.UserContext(), tenant.GetSchoolCode(c), c.Params("id"), patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(assignment)
}

func (h *AcademicsHandler) RemoveAssignment(c *fiber.Ctx) error {
	if err := h.assignments.Remove(c.UserContext(), tenant.GetSchoolCode(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
