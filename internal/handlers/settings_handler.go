package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/tenant"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.UserContext(), tenant.GetSchoolCode(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.SettingsRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return invalid(c, err)
	}
	user, _ := tenant.GetSessionUser(c)

	settings, err := h.settings.Update(c.UserContext(), tenant.GetSchoolCode(c), services.SettingsPatch{
		SchoolName:         req.SchoolName,
		AcademicYear:       req.AcademicYear,
		CurrentTerm:        req.CurrentTerm,
		AllowTeacherSignup: req.AllowTeacherSignup,
		MaintenanceMode:    req.MaintenanceMode,
	}, user.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(settings)
}
