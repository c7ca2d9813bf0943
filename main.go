package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bugsCreator/bugscreator-wishes/internal/config"
	"github.com/bugsCreator/bugscreator-wishes/internal/handlers"
	"github.com/bugsCreator/bugscreator-wishes/internal/models"
	"github.com/bugsCreator/bugscreator-wishes/internal/repositories"
	"github.com/bugsCreator/bugscreator-wishes/internal/services"
	"github.com/bugsCreator/bugscreator-wishes/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.Wish{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// Event publishing is best-effort; without a broker URL the service
	// runs fine, it just skips wish.created events.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Repositories ---
	wishRepo := repositories.NewGORMWishRepository(db)

	// --- Services ---
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	wishService := services.NewWishService(wishRepo, publisher)

	// --- Handlers ---
	wishHandler := handlers.NewWishHandler(wishService, cfg)
	siteHandler := handlers.NewSiteHandler(wishService, cfg)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		BodyLimit: 8 * 1024 * 1024, // room for a 5 MiB image plus base64 overhead
	})

	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	wishHandler.RegisterRoutes(apiV1)

	// --- Site Routes ---
	siteHandler.RegisterRoutes(app)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Wish Event Consumer ---
	// Placeholder consumer for wish.created events. A notifier (email,
	// push) would hang off this queue.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for wish events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Wish Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeWishEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens Postgres when DATABASE_URL is set, SQLite otherwise.
// TranslateError is required so the unique index on slug surfaces as
// gorm.ErrDuplicatedKey, which the allocator relies on.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	}
	return gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
}
