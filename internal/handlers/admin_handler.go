package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/tenant"
)

type AdminHandler struct {
	accounts *services.AccountService
}

func NewAdminHandler(accounts *services.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

func actor(c *fiber.Ctx) (models.AuthUser, error) {
	user, ok := tenant.GetSessionUser(c)
	if !ok {
		return models.AuthUser{}, &services.AuthError{Kind: services.ErrUnauthorized, Message: "Unauthorized"}
	}
	return user, nil
}

func (h *AdminHandler) CreateAccount(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.CreateAccountRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	rec, err := h.accounts.CreateAccount(c.UserContext(), user, services.NewAccount{
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		Role:       models.Role(req.Role),
		SchoolCode: req.SchoolCode,
		Phone:      req.Phone,
		Subject:    req.Subject,
		Grade:      req.Grade,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *AdminHandler) CreateDeputy(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.CreateDeputyRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	rec, err := h.accounts.CreateDeputy(c.UserContext(), user, services.NewAccount{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *AdminHandler) SetStatus(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req dto.SetStatusRequest
	if err := dto.ParseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	rec, err := h.accounts.SetStatus(c.UserContext(), user, c.Params("id"), models.AccountStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rec)
}

func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	accounts, err := h.accounts.ListAccounts(c.UserContext(), user, services.DirectoryFilter{
		SchoolCode: c.Query("school_code"),
		Role:       models.Role(c.Query("role")),
		Status:     models.AccountStatus(c.Query("status")),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"accounts": accounts, "count": len(accounts)})
}

func (h *AdminHandler) ListActivity(c *fiber.Ctx) error {
	user, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	events, err := h.accounts.ListActivity(c.UserContext(), user, services.ActivityFilter{
		SchoolCode: c.Query("school_code"),
		UserID:     c.Query("user_id"),
		Action:     models.ActivityAction(c.Query("action")),
		Limit:      limit,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}
