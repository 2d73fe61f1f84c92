package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/DineVoice/dinevoice-backend/database"
	"github.com/DineVoice/dinevoice-backend/internal/config"
	"github.com/DineVoice/dinevoice-backend/internal/dialogue"
	"github.com/DineVoice/dinevoice-backend/internal/email"
	"github.com/DineVoice/dinevoice-backend/internal/handlers"
	"github.com/DineVoice/dinevoice-backend/internal/jobs"
	"github.com/DineVoice/dinevoice-backend/internal/models"
	"github.com/DineVoice/dinevoice-backend/internal/phone"
	"github.com/DineVoice/dinevoice-backend/internal/routes"
	"github.com/DineVoice/dinevoice-backend/internal/services"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - using environment variables")
	}

	cfg := config.Load()

	// Initialize storage
	var store storage.Store

	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Restaurant{},
			&models.BusinessHour{},
			&models.MenuCategory{},
			&models.MenuItem{},
			&models.Order{},
			&models.OrderItem{},
			&models.Reservation{},
			&models.CallRecord{},
			&models.IdempotencyKey{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Session storage: Redis when configured, in-memory otherwise
	var sessions services.SessionStore
	var memorySessions *services.MemorySessionStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		sessions = services.NewRedisSessionStore(client, cfg.SessionTTL)
		log.Printf("✅ Using Redis session storage at %s", cfg.RedisAddr)
	} else {
		memorySessions = services.NewMemorySessionStore(cfg.SessionTTL)
		sessions = memorySessions
		log.Println("⚠️  Using in-memory session storage (single instance only)")
	}

	// Initialize Twilio service
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Printf("⚠️  Twilio service not initialized: %v", err)
		log.Println("⚠️  Outbound calls and SMS notifications are disabled")
		twilioService = nil
	} else {
		log.Println("✅ Twilio service initialized")
	}

	smtp := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	normalizer := phone.Normalizer{CountryCode: cfg.DefaultCountryCode}
	resolver := services.NewResolver(store, normalizer)
	dispatcher := services.NewDispatcher(store, twilioService, smtp)
	engine := dialogue.NewEngine(store, dispatcher)

	// Start cleanup jobs
	cleanupJob := jobs.NewCleanupJob(store, memorySessions)
	cleanupJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "DineVoice Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup routes
	routes.SetupRoutes(app, routes.Handlers{
		Voice:  handlers.NewVoiceHandler(store, sessions, resolver, engine),
		Menu:   handlers.NewMenuHandler(resolver),
		Call:   handlers.NewCallHandler(twilioService, cfg.VoiceWebhookURL),
		Debug:  handlers.NewDebugHandler(sessions),
		Health: handlers.NewHealthHandler("1.0.0", sessions),
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping cleanup jobs...")
		cleanupJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 DineVoice Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("🌍 Environment: %s", environment(cfg))
	log.Printf("📞 Telephony: %s", telephonyStatus(twilioService))
	log.Println("========================================")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

func storageType(cfg config.Config) string {
	if cfg.UseMemoryStore {
		return "in-memory"
	}
	return "postgresql"
}

func environment(cfg config.Config) string {
	if cfg.Environment == "" {
		return "production"
	}
	return cfg.Environment
}

func telephonyStatus(svc *services.TwilioService) string {
	if svc == nil {
		return "not configured"
	}
	return "configured (" + svc.From() + ")"
}
