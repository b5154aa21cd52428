package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playarena/backend/internal/game"
)

// GamesStatus reports live queue, room and presence counters.
func GamesStatus(coord *game.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.GetStats())
	}
}
