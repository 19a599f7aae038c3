package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/services"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUnsupported):
		return fiber.StatusNotImplemented
	case errors.Is(err, services.ErrInvalid):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// fail writes err as an ErrorResponse. Internal errors are logged and
// reported with a generic message.
func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "method", c.Method(), "error", err)
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Message: services.Message(err),
	})
}

func invalid(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: err.Error(),
	})
}
