package apps

import (
	"github.com/gofiber/fiber/v2"
	"github.com/zaroda/school-backend/internal/config"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

// Deps is what a plugin receives when it mounts its routes.
type Deps struct {
	Store    *storage.Store
	Config   *config.Config
	Schools  *tenant.Registry
	Settings *services.SettingsService
}

// Plugin defines the interface every domain module must implement.
type Plugin interface {
	// ID returns the unique module identifier.
	ID() string

	// KeyPrefixes lists the storage key prefixes the module owns.
	KeyPrefixes() []string

	// RegisterRoutes mounts module routes on the given Fiber group.
	// The group is already prefixed with /api/p, has JWT and live-session
	// middleware applied, and carries the caller's school code.
	RegisterRoutes(router fiber.Router, deps Deps)
}
