package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/tenant"
)

// RequireRoles allows the request through only when the token's role is
// one of roles.
func RequireRoles(roles ...models.Role) fiber.Handler {
	allowed := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed = append(allowed, string(r))
	}

	return func(c *fiber.Ctx) error {
		if contains(allowed, tenant.GetRole(c)) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: services.MsgNotPermitted,
		})
	}
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
