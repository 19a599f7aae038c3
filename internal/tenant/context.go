package tenant

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/zaroda/school-backend/internal/models"
)

// GetSchoolCode extracts the school code set by the tenant middleware.
func GetSchoolCode(c *fiber.Ctx) string {
	if code, ok := c.Locals("school_code").(string); ok {
		return code
	}
	return ""
}

// GetClaims returns the verified JWT claims stored by the auth middleware.
func GetClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// GetUserID extracts the session user id from JWT claims in context.
func GetUserID(c *fiber.Ctx) (string, error) {
	claims, err := GetClaims(c)
	if err != nil {
		return "", err
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub claim")
	}
	return sub, nil
}

// GetRole extracts the role claim.
func GetRole(c *fiber.Ctx) string {
	claims, err := GetClaims(c)
	if err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// GetSessionUser returns the live session identity stored by the session
// middleware or the route guard.
func GetSessionUser(c *fiber.Ctx) (models.AuthUser, bool) {
	user, ok := c.Locals("session_user").(models.AuthUser)
	return user, ok
}
