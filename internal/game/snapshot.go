package game

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const snapshotKeyPrefix = "arena:room:"

// roomSnapshot is the redis mirror of a room, written after every state
// change for ops inspection and post-incident reconstruction.
type roomSnapshot struct {
	RoomID      string         `json:"roomId"`
	GameType    GameType       `json:"gameType"`
	Player1     string         `json:"player1"`
	Player2     string         `json:"player2"`
	BetAmount   int            `json:"betAmount"`
	IsFreeGame  bool           `json:"isFreeGame"`
	FromInvite  bool           `json:"fromInvite"`
	Points      map[string]int `json:"points"`
	Round       int            `json:"round,omitempty"`
	Board       []string       `json:"board,omitempty"`
	CurrentTurn string         `json:"currentTurn"`
	Finished    bool           `json:"finished"`
	MoveCount   int            `json:"moveCount"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// saveSnapshot mirrors the room into redis with the configured TTL. The
// snapshot is built under the lock; the write happens off it. Callers must
// hold c.mu.
func (c *Coordinator) saveSnapshot(room *Room) {
	if c.rdb == nil {
		return
	}
	snap := roomSnapshot{
		RoomID:      room.ID,
		GameType:    room.GameType,
		Player1:     room.Player1,
		Player2:     room.Player2,
		BetAmount:   room.BetAmount,
		IsFreeGame:  room.IsFreeGame,
		FromInvite:  room.FromInvite,
		Points:      room.pointsCopy(),
		Round:       room.Round,
		Board:       room.boardCopy(),
		CurrentTurn: room.CurrentTurn,
		Finished:    room.Finished,
		MoveCount:   len(room.Moves),
		UpdatedAt:   time.Now(),
	}
	ttl := c.settings.SnapshotTTL

	go func() {
		payload, err := json.Marshal(snap)
		if err != nil {
			log.Printf("[REDIS] Failed to marshal snapshot for room %s: %v", snap.RoomID, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.settings.GatewayTimeout)
		defer cancel()
		if err := c.rdb.Set(ctx, snapshotKeyPrefix+snap.RoomID, payload, ttl).Err(); err != nil {
			log.Printf("[REDIS] Failed to save snapshot for room %s: %v", snap.RoomID, err)
		}
	}()
}

// deleteSnapshot drops the redis mirror of a torn-down room.
func (c *Coordinator) deleteSnapshot(roomID string) {
	if c.rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.settings.GatewayTimeout)
		defer cancel()
		if err := c.rdb.Del(ctx, snapshotKeyPrefix+roomID).Err(); err != nil {
			log.Printf("[REDIS] Failed to delete snapshot for room %s: %v", roomID, err)
		}
	}()
}
