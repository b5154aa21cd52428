package models

import (
	"database/sql"
	"time"
)

// GameRoom represents a matched head-to-head room as recorded in the journal.
// The authoritative in-memory session lives in internal/game; this row outlives it.
type GameRoom struct {
	ID          int            `db:"id" json:"id"`
	RoomID      string         `db:"room_id" json:"room_id"`
	GameType    string         `db:"game_type" json:"game_type"`
	Player1ID   string         `db:"player1_id" json:"player1_id"`
	Player2ID   string         `db:"player2_id" json:"player2_id"`
	BetAmount   int            `db:"bet_amount" json:"bet_amount"`
	IsFreeGame  bool           `db:"is_free_game" json:"is_free_game"`
	FromInvite  bool           `db:"from_invite" json:"from_invite"`
	Status      string         `db:"status" json:"status"`
	WinnerID    sql.NullString `db:"winner_id" json:"winner_id,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	CompletedAt sql.NullTime   `db:"completed_at" json:"completed_at,omitempty"`
}

// RoundResult represents one resolved round within a room.
type RoundResult struct {
	ID        int       `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	Round     int       `db:"round" json:"round"`
	Winner    string    `db:"winner" json:"winner"`
	Detail    string    `db:"detail" json:"detail,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
