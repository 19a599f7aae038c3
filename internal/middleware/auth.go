package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/tenant"
)

// JWTProtected verifies bearer tokens signed by tokens.
func JWTProtected(tokens *services.TokenIssuer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: tokens.Secret()},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// SessionRequired rejects tokens that do not belong to the live session,
// so a token stops working once its holder logs out.
func SessionRequired(sessions *services.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return sessionEnded(c)
		}
		user, ok := sessions.SessionFor(userID)
		if !ok {
			return sessionEnded(c)
		}
		c.Locals("session_user", user)
		return c.Next()
	}
}

func sessionEnded(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Session has ended. Please log in again.",
	})
}
