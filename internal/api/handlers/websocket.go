package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/playarena/backend/internal/ws"
)

// HandleGameWebSocket handles real-time game communication
func HandleGameWebSocket(server *ws.GameServer) gin.HandlerFunc {
	return server.HandleWebSocket
}
