package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/tenant"
)

// TenantMiddleware resolves the school a protected request acts on. The
// token's school_code claim is used, except that a superadmin may pick any
// registered school with the X-School-Code header or school_code query.
// The resolved code is stored in canonical form.
func TenantMiddleware(registry *tenant.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tenant.GetRole(c) == string(models.RoleSuperAdmin) {
			code := strings.TrimSpace(c.Get("X-School-Code"))
			if code == "" {
				code = strings.TrimSpace(c.Query("school_code"))
			}
			if code != "" {
				if !registry.Allows(code) {
					return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
						Error:   true,
						Message: "Invalid X-School-Code: " + code,
					})
				}
				c.Locals("school_code", tenant.Canonical(code))
				return c.Next()
			}
		}

		if claims, err := tenant.GetClaims(c); err == nil {
			if code, ok := claims["school_code"].(string); ok && tenant.Canonical(code) != "" {
				c.Locals("school_code", tenant.Canonical(code))
				return c.Next()
			}
		}

		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "X-School-Code header is required",
		})
	}
}

// RequireFeature rejects requests for schools that have switched feature off
// in the registry. It must run after TenantMiddleware.
func RequireFeature(registry *tenant.Registry, feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if registry.FeatureEnabled(tenant.GetSchoolCode(c), feature) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error:   true,
			Message: feature + " is not enabled for this school",
		})
	}
}

// PauseWritesDuringMaintenance answers 503 to changes while the school's
// settings have maintenance mode on. Reads and superadmin requests pass.
// It must run after TenantMiddleware.
func PauseWritesDuringMaintenance(settings *services.SettingsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if settings == nil || tenant.GetRole(c) == string(models.RoleSuperAdmin) {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		current, err := settings.Get(c.UserContext(), tenant.GetSchoolCode(c))
		if err != nil {
			slog.Error("settings lookup failed", "school_code", tenant.GetSchoolCode(c), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Internal server error",
			})
		}
		if current.MaintenanceMode {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error:   true,
				Message: services.MsgMaintenance,
			})
		}
		return c.Next()
	}
}
