package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/zaroda/school-backend/internal/apps"
	"github.com/zaroda/school-backend/internal/apps/academics"
	"github.com/zaroda/school-backend/internal/config"
	"github.com/zaroda/school-backend/internal/database"
	"github.com/zaroda/school-backend/internal/logging"
	"github.com/zaroda/school-backend/internal/middleware"
	"github.com/zaroda/school-backend/internal/routes"
	"github.com/zaroda/school-backend/internal/services"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.StorageDriver == "postgres" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// School registry
	schools, err := tenant.LoadFromFile(cfg.SchoolsConfigPath)
	if err != nil {
		slog.Error("failed to load school registry", "path", cfg.SchoolsConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("school registry loaded", "schools", len(schools.All()))

	// Storage
	ctx := context.Background()
	backend, err := database.OpenBackend(ctx, cfg)
	if err != nil {
		slog.Error("storage initialization failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	store := storage.NewStore(backend)

	// SQL log handler (ERROR+ async batch) and cleanup (30-day retention)
	var dbLogHandler *logging.DBHandler
	cleanupDone := make(chan struct{})
	if cfg.UsesSQL() {
		dbLogHandler = logging.NewDBHandler(database.DB, 5*time.Second)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
			dbLogHandler,
		)))
		logging.StartCleanup(database.DB, 30*24*time.Hour, cleanupDone)
	}

	// Services
	settings := services.NewSettingsService(store, schools)
	sessions := services.NewSessionManager(ctx, store, services.SessionOptions{
		SuperAdmin: services.SuperAdminCredentials{
			SchoolCode: cfg.SuperAdminSchoolCode,
			Email:      cfg.SuperAdminEmail,
			Password:   cfg.SuperAdminPassword,
		},
		Schools:  schools,
		Settings: settings,
	})
	svc := routes.Services{
		Store:    store,
		Sessions: sessions,
		Tokens:   services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		Accounts: services.NewAccountService(store, schools),
		Settings: settings,
		Schools:  schools,
	}

	// Domain plugins
	plugins := []apps.Plugin{
		academics.New(),
	}
	for _, p := range plugins {
		slog.Info("plugin registered", "plugin", p.ID(), "keys", p.KeyPrefixes())
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, svc, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "storage", cfg.StorageDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if dbLogHandler != nil {
		dbLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := store.Close(); err != nil {
		slog.Error("storage close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
