package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"gorm.io/gorm"

	"github.com/estatery/listings/internal/auth"
	"github.com/estatery/listings/internal/config"
	"github.com/estatery/listings/internal/database"
	"github.com/estatery/listings/internal/handlers"
	"github.com/estatery/listings/internal/listing"
	"github.com/estatery/listings/internal/middleware"

	_ "github.com/estatery/listings/docs/api" // Swagger docs
)

// @title Estatery Listings API
// @version 1.0.0
// @description Real-estate listing service: property and rental search, suggestions, accounts
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/estatery/listings

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Select the persistence backend. Demo mode keeps everything in process
	// memory; otherwise GORM connects to the configured database.
	var (
		db        *gorm.DB
		propsRepo listing.Repository
		userStore auth.UserStore
	)
	if cfg.DemoMode() {
		log.Println("No database configured, running in demo mode (in-memory stores)")
		propsRepo = listing.NewMemoryStore()
		userStore = auth.NewMemoryUserStore()
	} else {
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		propsRepo = listing.NewGormStore(db)
		userStore = auth.NewGormUserStore(db)
	}

	// Rentals always live in memory, regenerated on each start.
	rentalsRepo := listing.NewMemoryStore()
	gen := listing.NewGenerator(time.Now().UnixNano())
	if err := rentalsRepo.Seed(context.Background(), gen.Rentals(cfg.SeedCount)); err != nil {
		log.Fatalf("Failed to seed rentals: %v", err)
	}

	authSvc := auth.NewService(cfg, userStore, auth.NewMemorySessionStore())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(cfg),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("estatery_listings")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	api.Get("/health", handlers.HealthHandler(cfg, db))

	props := handlers.NewPropertiesHandler(propsRepo, cfg.PageSize, cfg.SeedCount)
	rentals := handlers.NewRentalsHandler(rentalsRepo, cfg.PageSize, cfg.SeedCount)
	users := handlers.NewUsersHandler(authSvc)
	handlers.RegisterRoutes(api, props, rentals, users, authSvc)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Resource not found",
			"code":    "NOT_FOUND",
		})
	})

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	log.Printf("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
