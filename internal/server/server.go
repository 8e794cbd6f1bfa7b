package server

import (
	"context"
	"time"

	"github.com/opsdeck/opsdeck/internal/controllers"
	"github.com/opsdeck/opsdeck/internal/middlewares"
	"github.com/opsdeck/opsdeck/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rs/zerolog/log"
)

type HTTPServerDependencies struct {
	GatewayController      *controllers.GatewayController
	NotificationController *controllers.NotificationController
	TokenVerifier          middlewares.TokenVerifier
}

func NewHTTPServer(ctx context.Context, deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "opsdeck-gateway",
	})

	router.Use(cors.New())
	router.Use(logger.New())

	// Health check endpoint (no authentication required)
	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "opsdeck-gateway",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if deps.TokenVerifier == nil {
		log.Fatal().Msg("Token verifier is nil, please configure an auth signing secret")
	}

	api := router.Group("/api")
	api.Use(middlewares.BearerAuthMiddleware(deps.TokenVerifier))

	api.Post("/cicd/actions", deps.GatewayController.HandleAction)
	api.Post("/notifications/send", deps.NotificationController.SendNotification)

	return router
}
