package store

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/playarena/backend/internal/models"
)

// Store is the local journal of rooms and results. The platform API remains
// the system of record; this mirror exists for ops queries and reconciliation.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// RecordRoomCreated inserts a journal row for a newly matched room.
// Idempotent by room_id.
func (s *Store) RecordRoomCreated(roomID, gameType, player1, player2 string, betAmount int, isFreeGame, fromInvite bool) error {
	_, err := s.db.Exec(`
		INSERT INTO game_rooms (room_id, game_type, player1_id, player2_id, bet_amount, is_free_game, from_invite, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'active')
		ON CONFLICT (room_id) DO NOTHING
	`, roomID, gameType, player1, player2, betAmount, isFreeGame, fromInvite)
	if err != nil {
		return fmt.Errorf("failed to record room %s: %w", roomID, err)
	}
	return nil
}

// RecordRoundResult upserts one resolved round. detail is any JSON-marshalable
// per-round payload (moves, board, timeout marks).
func (s *Store) RecordRoundResult(roomID string, round int, winner string, detail interface{}) error {
	var detailJSON []byte
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			log.Printf("[STORE] Failed to marshal round detail for room %s: %v", roomID, err)
		} else {
			detailJSON = b
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO round_results (room_id, round, winner, detail)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, round) DO UPDATE SET winner = EXCLUDED.winner, detail = EXCLUDED.detail
	`, roomID, round, winner, detailJSON)
	if err != nil {
		return fmt.Errorf("failed to record round %d for room %s: %w", round, roomID, err)
	}
	return nil
}

// RecordMatchFinished marks the room completed with its winner.
func (s *Store) RecordMatchFinished(roomID, winnerID string) error {
	_, err := s.db.Exec(`
		UPDATE game_rooms
		SET status = 'completed', winner_id = $2, completed_at = NOW()
		WHERE room_id = $1
	`, roomID, winnerID)
	if err != nil {
		return fmt.Errorf("failed to mark room %s completed: %w", roomID, err)
	}
	return nil
}

// GetRoom fetches one journal row by room id.
func (s *Store) GetRoom(roomID string) (*models.GameRoom, error) {
	var room models.GameRoom
	if err := s.db.Get(&room, `SELECT * FROM game_rooms WHERE room_id = $1`, roomID); err != nil {
		return nil, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	return &room, nil
}

// RecentRooms lists the latest journal rows, newest first.
func (s *Store) RecentRooms(limit int) ([]models.GameRoom, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rooms := []models.GameRoom{}
	if err := s.db.Select(&rooms, `SELECT * FROM game_rooms ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent rooms: %w", err)
	}
	return rooms, nil
}

// RoomRounds lists a room's resolved rounds in play order.
func (s *Store) RoomRounds(roomID string) ([]models.RoundResult, error) {
	rounds := []models.RoundResult{}
	if err := s.db.Select(&rounds, `SELECT * FROM round_results WHERE room_id = $1 ORDER BY round ASC`, roomID); err != nil {
		return nil, fmt.Errorf("failed to list rounds for room %s: %w", roomID, err)
	}
	return rounds, nil
}

// RecordRoomAbandoned marks a room abandoned (player disconnect mid-match).
func (s *Store) RecordRoomAbandoned(roomID string) error {
	_, err := s.db.Exec(`
		UPDATE game_rooms
		SET status = 'abandoned', completed_at = NOW()
		WHERE room_id = $1 AND status = 'active'
	`, roomID)
	if err != nil {
		return fmt.Errorf("failed to mark room %s abandoned: %w", roomID, err)
	}
	return nil
}
