package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playarena/backend/internal/api"
	"github.com/playarena/backend/internal/config"
	"github.com/playarena/backend/internal/database"
	"github.com/playarena/backend/internal/game"
	"github.com/playarena/backend/internal/gateway"
	"github.com/playarena/backend/internal/migrations"
	"github.com/playarena/backend/internal/redis"
	"github.com/playarena/backend/internal/store"
	"github.com/playarena/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize the platform API gateway client (if configured)
	var gw game.Gateway
	if client := gateway.NewClient(cfg); client != nil {
		gateway.SetDefault(client)
		gw = client
		log.Printf("[GATEWAY] Platform API client initialized (base=%s)", cfg.PlatformAPIBaseURL)
	} else {
		log.Printf("[GATEWAY] Platform API not configured - rooms will not be persisted")
	}

	// Wire the hub and the game coordinator
	journal := store.New(db)
	hub := ws.NewHub()
	coord := game.NewCoordinator(game.SettingsFromConfig(cfg), hub, gw, journal, rdb)
	server := ws.NewGameServer(hub, coord, cfg.JWTSecret)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, cfg, coord, server, journal)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting PlayArena session server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
