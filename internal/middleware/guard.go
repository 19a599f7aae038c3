package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
)

// RouteGuard protects a page reserved for required. Requests made while the
// session is still loading get 202 pending; everyone else who may not see
// the page is redirected, never refused.
func RouteGuard(sessions *services.SessionManager, required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := sessions.CurrentUser()
		decision := services.Guard(user, sessions.Loading(), required)
		switch decision.Outcome {
		case services.GuardPending:
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "pending"})
		case services.GuardRedirect:
			return c.Redirect(decision.Location, fiber.StatusFound)
		}
		c.Locals("session_user", *user)
		return c.Next()
	}
}
