package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/DineVoice/dinevoice-backend/internal/handlers"
	"github.com/DineVoice/dinevoice-backend/internal/middleware"
)

// Handlers carries the wired handler set SetupRoutes mounts.
type Handlers struct {
	Voice  *handlers.VoiceHandler
	Menu   *handlers.MenuHandler
	Call   *handlers.CallHandler
	Debug  *handlers.DebugHandler
	Health *handlers.HealthHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h Handlers) {
	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to DineVoice Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":  "/health",
				"api":     "/api",
				"webhook": "/webhook/voice",
			},
		})
	})

	app.Get("/health", h.Health.Check)

	// API routes
	api := app.Group("/api")
	api.Get("/menu", h.Menu.Lookup)
	api.Post("/menu", h.Menu.Lookup)
	api.Post("/calls", h.Call.MakeCall)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// Voice webhook - ENVIRONMENT-AWARE VALIDATION
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		// Development: skip validation for ngrok and curl
		webhooks.Get("/voice", h.Voice.HandleWebhook)
		webhooks.Post("/voice", h.Voice.HandleWebhook)
		log.Println("⚠️  Voice webhook validation DISABLED for development")
	} else {
		// Production: validate webhook signature
		webhooks.Get("/voice", middleware.ValidateTwilioSignature(), h.Voice.HandleWebhook)
		webhooks.Post("/voice", middleware.ValidateTwilioSignature(), h.Voice.HandleWebhook)
	}

	// Debug routes, development only
	if os.Getenv("ENVIRONMENT") == "development" {
		debug := app.Group("/debug")
		debug.Get("/sessions", h.Debug.Sessions)
	}
}
