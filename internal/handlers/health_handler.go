package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/dto"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

type HealthHandler struct {
	store    *storage.Store
	registry *tenant.Registry
}

func NewHealthHandler(store *storage.Store, registry *tenant.Registry) *HealthHandler {
	return &HealthHandler{store: store, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storageStatus := "ok"
	if err := h.store.Ping(c.UserContext()); err != nil {
		storageStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Storage:     storageStatus,
		SchoolCount: len(h.registry.All()),
	})
}
