package api

import (
	"github.com/gin-gonic/gin"

	"github.com/playarena/backend/internal/api/handlers"
	"github.com/playarena/backend/internal/config"
	"github.com/playarena/backend/internal/game"
	"github.com/playarena/backend/internal/middleware"
	"github.com/playarena/backend/internal/store"
	"github.com/playarena/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, coord *game.Coordinator, server *ws.GameServer, s *store.Store) {
	router.Use(middleware.CORSMiddleware(cfg))

	router.GET("/health", handlers.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/games/status", handlers.GamesStatus(coord))
		v1.GET("/games/ws", handlers.HandleGameWebSocket(server))
		v1.GET("/games/rooms", handlers.RecentRooms(s))
		v1.GET("/games/rooms/:roomId", handlers.RoomHistory(s))
	}
}
