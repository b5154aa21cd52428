package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Platform API (persistence & payout gateway)
	PlatformAPIBaseURL string
	GatewayTimeoutSecs int

	// Game Settings
	RPSTurnSeconds         int
	TTTTurnSeconds         int
	RPSRoundDelaySeconds   int
	TTTRoundDelaySeconds   int
	InvitationExpirySecs   int
	RoomSnapshotTTLMinutes int

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/playarena?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Platform API
		PlatformAPIBaseURL: getEnv("PLATFORM_API_BASE_URL", "http://localhost:3000"),
		GatewayTimeoutSecs: getEnvInt("GATEWAY_TIMEOUT_SECONDS", 10),

		// Game Settings
		RPSTurnSeconds:         getEnvInt("RPS_TURN_SECONDS", 15),
		TTTTurnSeconds:         getEnvInt("TTT_TURN_SECONDS", 30),
		RPSRoundDelaySeconds:   getEnvInt("RPS_ROUND_DELAY_SECONDS", 4),
		TTTRoundDelaySeconds:   getEnvInt("TTT_ROUND_DELAY_SECONDS", 3),
		InvitationExpirySecs:   getEnvInt("INVITATION_EXPIRY_SECONDS", 120),
		RoomSnapshotTTLMinutes: getEnvInt("ROOM_SNAPSHOT_TTL_MINUTES", 60),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
