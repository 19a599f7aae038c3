package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
)

type AuthHandler struct {
	sessions *services.SessionManager
	tokens   *services.TokenIssuer
}

func NewAuthHandler(sessions *services.SessionManager, tokens *services.TokenIssuer) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens}
}

func (h *AuthHandler) respond(c *fiber.Ctx, status int, user models.AuthUser) error {
	token, exp, err := h.tokens.Issue(user)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(status).JSON(dto.AuthResponse{
		User:      user,
		Token:     token,
		ExpiresAt: exp,
		Redirect:  services.DashboardFor(user.Role),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	user, err := h.sessions.Login(c.UserContext(), services.Credentials{
		Role:       models.Role(req.Role),
		Email:      req.Email,
		Password:   req.Password,
		SchoolCode: req.SchoolCode,
	})
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusOK, user)
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	user, err := h.sessions.Signup(c.UserContext(), services.TeacherSignupData{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		SchoolCode: req.SchoolCode,
		Phone:      req.Phone,
		Subject:    req.Subject,
		Grade:      req.Grade,
	})
	if err != nil {
		return fail(c, err)
	}
	return h.respond(c, fiber.StatusCreated, user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out", "redirect": services.LoginRoute})
}

// Session reports the current session state without requiring a token.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	resp := dto.SessionResponse{Loading: h.sessions.Loading(), Redirect: services.LoginRoute}
	if user := h.sessions.CurrentUser(); user != nil {
		resp.User = user
		resp.Redirect = services.DashboardFor(user.Role)
	}
	return c.JSON(resp)
}
