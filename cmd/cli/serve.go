package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "mongo-admin/internal/admin/adapter/http"
	"mongo-admin/internal/di"
	apperrors "mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/logger"
	"mongo-admin/internal/shared/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	appLogger := logger.NewLogger()

	cfg, err := loadConfig(appLogger)
	if err != nil {
		return err
	}
	appLogger.Info("Application configuration loaded successfully")

	container := di.NewContainer(cfg, appLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Cleanup(ctx); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	startCtx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()
	if err := container.ConnectMongo(startCtx); err != nil {
		return err
	}
	container.ConnectRedis(startCtx)
	if err := container.InitializeAdmin(); err != nil {
		return err
	}

	app := newApp(container)

	serverAddr := cfg.Server.Addr()
	appLogger.Infof("Starting HTTP server on %s", serverAddr)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			appLogger.Errorf("Server failed: %v", err)
			return err
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
	return nil
}

// newApp builds the fiber application: middleware, health, metrics and the
// admin routes when the module is initialized.
func newApp(container *di.Container) *fiber.App {
	cfg := container.Config
	appLogger := container.Logger

	app := fiber.New(fiber.Config{
		AppName:               "mongo-admin",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           60 * time.Second,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			appLogger.Errorf("HTTP error on %s %s: %v", c.Method(), c.Path(), err)
			return c.Status(apperrors.HTTPStatus(err)).JSON(fiber.Map{
				"error": apperrors.PublicMessage(err),
				"code":  apperrors.PublicCode(err),
			})
		},
	})

	app.Use(recover.New())
	app.Use(httpadapter.RequestIDMiddleware())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID," + cfg.Auth.TenantHeader,
		MaxAge:       86400,
	}))
	if cfg.Server.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:               cfg.Server.RateLimit,
			Expiration:        time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.Get("X-Forwarded-For", c.IP())
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "rate limit exceeded, try again later",
				})
			},
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		status := container.HealthCheck(ctx)
		if !di.Healthy(status) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "UNHEALTHY",
				"services": status,
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"services":  status,
			"timestamp": time.Now().UTC(),
		})
	})
	app.Get("/metrics", metrics.Handler())

	if module := container.GetAdminModule(); module != nil {
		module.RegisterRoutes(app)
	}
	return app
}
