package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/zaroda/school-backend/internal/apps"
	"github.com/zaroda/school-backend/internal/config"
	"github.com/zaroda/school-backend/internal/handlers"
	"github.com/zaroda/school-backend/internal/middleware"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

// Services bundles what the HTTP layer is built from.
type Services struct {
	Store    *storage.Store
	Sessions *services.SessionManager
	Tokens   *services.TokenIssuer
	Accounts *services.AccountService
	Settings *services.SettingsService
	Schools  *tenant.Registry
}

func Setup(app *fiber.App, cfg *config.Config, svc Services, plugins []apps.Plugin) {
	authHandler := handlers.NewAuthHandler(svc.Sessions, svc.Tokens)
	healthHandler := handlers.NewHealthHandler(svc.Store, svc.Schools)
	adminHandler := handlers.NewAdminHandler(svc.Accounts)
	settingsHandler := handlers.NewSettingsHandler(svc.Settings)
	dashboardHandler := handlers.NewDashboardHandler(svc.Settings)

	// Dashboards: the guard redirects instead of refusing
	for _, role := range models.AllRoles {
		app.Get(services.DashboardFor(role), middleware.RouteGuard(svc.Sessions, role), dashboardHandler.Show)
	}

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	auth := api.Group("/auth")
	auth.Get("/session", authHandler.Session)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	credentials := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	auth.Post("/login", credentials, authHandler.Login)
	auth.Post("/signup", credentials, authHandler.Signup)

	// Protected routes need a valid token that belongs to the live session
	protect := []fiber.Handler{middleware.JWTProtected(svc.Tokens), middleware.SessionRequired(svc.Sessions)}
	api.Post("/auth/logout", append(protect, authHandler.Logout)...)

	admin := api.Group("/admin", append(protect, middleware.RequireRoles(models.RoleSuperAdmin, models.RoleHOI))...)
	admin.Get("/accounts", adminHandler.ListAccounts)
	admin.Post("/accounts", middleware.RequireRoles(models.RoleSuperAdmin), adminHandler.CreateAccount)
	admin.Put("/accounts/:id/status", adminHandler.SetStatus)
	admin.Post("/deputies", middleware.RequireRoles(models.RoleHOI), adminHandler.CreateDeputy)
	admin.Get("/activity", adminHandler.ListActivity)

	// Plugin routes live under /api/p with the caller's school resolved
	protected := api.Group("/p", append(protect, middleware.TenantMiddleware(svc.Schools))...)
	protected.Get("/settings", settingsHandler.Get)
	protected.Put("/settings", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleHOI), settingsHandler.Update)

	deps := apps.Deps{Store: svc.Store, Config: cfg, Schools: svc.Schools, Settings: svc.Settings}
	for _, p := range plugins {
		p.RegisterRoutes(protected, deps)
	}
}
