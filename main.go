package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/seed"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"
)

// loadConfig sets configuration defaults and enables environment overrides.
func loadConfig() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DRIVER", "memory") // memory | sqlite | postgres
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("SEED_FILE", "")
	viper.SetDefault("JWT_SECRET", "catalog_dev_secret")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables product events
	viper.AutomaticEnv()
}

// newRepositories builds the product and user repositories for the
// configured store backend. The store is swappable behind the repository
// interfaces: an in-memory mock store or a GORM-backed database.
func newRepositories() (repositories.ProductRepository, repositories.UserRepository, error) {
	driver := viper.GetString("DATABASE_DRIVER")
	dsn := viper.GetString("DATABASE_DSN")

	switch driver {
	case "memory":
		return repositories.NewMemoryProductRepository(), repositories.NewMemoryUserRepository(), nil
	case "sqlite":
		if dsn == "" {
			dsn = "catalog.db"
		}
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repositories.NewGORMProductRepository(db), repositories.NewGORMUserRepository(db), nil
	case "postgres":
		if dsn == "" {
			dsn = "host=127.0.0.1 user=postgres password=postgres dbname=catalog port=5432 sslmode=disable"
		}
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return repositories.NewGORMProductRepository(db), repositories.NewGORMUserRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown DATABASE_DRIVER %q", driver)
	}
}

// NewApp wires the configured store, services, and handlers into a Fiber
// app. publisher may be nil, which disables product events. When SEED_FILE
// is set, the seed document is loaded into the store before the app is
// returned.
func NewApp(publisher services.EventPublisher) (*fiber.App, *services.AuthService, error) {
	productRepo, userRepo, err := newRepositories()
	if err != nil {
		return nil, nil, err
	}

	productService := services.NewProductService(productRepo, publisher)
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"))

	if seedFile := viper.GetString("SEED_FILE"); seedFile != "" {
		count, err := seed.Load(seedFile, productService)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// An absent seed file is fine; the store just starts empty.
			log.Printf("Seed file %s not found, skipping seeding", seedFile)
		case err != nil:
			return nil, nil, fmt.Errorf("seeding failed: %w", err)
		default:
			log.Printf("Seeded %d products from %s", count, seedFile)
		}
	}

	productHandler := handlers.NewProductHandler(productService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Public surface: auth plus catalog reads.
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	// Mutations require a valid token.
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterWriteRoutes(protectedRoutes)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, authService, nil
}

func main() {
	loadConfig()
	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// Product events are optional: without a broker the API still serves.
	var mqClient *rabbitmq.Client
	var publisher services.EventPublisher
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, product events disabled: %v", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
		}
	}

	app, _, err := NewApp(publisher)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for product events...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received product event %s (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
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
