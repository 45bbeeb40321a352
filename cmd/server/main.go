package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"

	"github.com/juhum/We-Go-Jim/internal/config"
	"github.com/juhum/We-Go-Jim/internal/repository"
	"github.com/juhum/We-Go-Jim/internal/routes"
	"github.com/juhum/We-Go-Jim/internal/services"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 2. Connect to Redis (session store)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	sessions := repository.NewSessionRepository(redisClient, cfg.SessionTTL)

	// 3. Connect to the object store
	if cfg.S3Endpoint == "" {
		log.Fatal("S3_ENDPOINT is required")
	}
	storage, err := services.NewMinioStorageService(
		ctx,
		cfg.S3Endpoint,
		cfg.S3AccessKey,
		cfg.S3SecretKey,
		cfg.S3Bucket,
		cfg.S3UseSSL,
	)
	if err != nil {
		log.Fatalf("Failed to connect to object store: %v", err)
	}

	// 4. Identity provider gateway
	identity := services.NewSupabaseIdentityService(
		cfg.IdentityURL,
		cfg.IdentityAPIKey,
		cfg.IdentityServiceKey,
	)

	// 5. Setup Fiber
	engine := html.New("./views", ".html")
	app := fiber.New(fiber.Config{Views: engine})

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, identity, storage, sessions)

	// 6. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
