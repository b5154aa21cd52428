package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/playarena/backend/internal/store"
)

// RecentRooms lists the latest journaled rooms.
func RecentRooms(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		rooms, err := s.RecentRooms(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rooms": rooms})
	}
}

// RoomHistory returns one journaled room with its resolved rounds.
func RoomHistory(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		room, err := s.GetRoom(roomID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
			return
		}
		rounds, err := s.RoomRounds(roomID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rounds"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"room": room, "rounds": rounds})
	}
}
