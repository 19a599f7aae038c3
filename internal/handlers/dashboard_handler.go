package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/tenant"
)

type DashboardHandler struct {
	settings *services.SettingsService
}

func NewDashboardHandler(settings *services.SettingsService) *DashboardHandler {
	return &DashboardHandler{settings: settings}
}

// Show renders the landing data of a guarded dashboard route.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	user, ok := tenant.GetSessionUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	resp := fiber.Map{"user": user, "dashboard": services.DashboardFor(user.Role)}
	if user.SchoolCode != "" {
		settings, err := h.settings.Get(c.UserContext(), user.SchoolCode)
		if err != nil {
			return fail(c, err)
		}
		resp["settings"] = settings
	}
	return c.JSON(resp)
}
