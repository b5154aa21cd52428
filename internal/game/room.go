package game

import (
	"fmt"
	"time"
)

// RoundRecord is one entry in a room's move log. RPS rounds fill the
// Moves/Result/Winner fields; TicTacToe placements fill Index/Symbol/Player/Board.
type RoundRecord struct {
	Round  int                `json:"round"`
	Moves  map[string]*string `json:"moves,omitempty"`
	Result string             `json:"result,omitempty"`
	Winner string             `json:"winner,omitempty"`
	Index  *int               `json:"index,omitempty"`
	Symbol string             `json:"symbol,omitempty"`
	Player string             `json:"player,omitempty"`
	Board  []string           `json:"board,omitempty"`
}

// Room is the authoritative in-memory state of one head-to-head match.
// All mutation happens under the coordinator mutex; a room has at most one
// live scheduled task (turn timer or round-display delay) at any time.
type Room struct {
	ID         string
	GameType   GameType
	Player1    string // host; always the first mover
	Player2    string
	BetAmount  int
	IsFreeGame bool
	FromInvite bool

	Points      map[string]int // RPS cumulative points / TicTacToe round scores
	Moves       []RoundRecord
	Round       int // TicTacToe round counter (1-based)
	Finished    bool
	CurrentTurn string
	Board       []string // TicTacToe only; "" means empty cell

	// pending holds this round's RPS decisions: a move, or nil for a
	// timeout mark. A missing key means the player has not acted yet.
	pending map[string]*string

	timer    *time.Timer
	timerSeq uint64
}

func newRoom(id string, gt GameType, player1, player2 string, betAmount int, isFreeGame, fromInvite bool) *Room {
	r := &Room{
		ID:          id,
		GameType:    gt,
		Player1:     player1,
		Player2:     player2,
		BetAmount:   betAmount,
		IsFreeGame:  isFreeGame,
		FromInvite:  fromInvite,
		Points:      map[string]int{player1: 0, player2: 0},
		CurrentTurn: player1,
	}
	switch gt {
	case GameRPS:
		r.pending = make(map[string]*string)
	case GameTicTacToe:
		r.Board = make([]string, 9)
		r.Round = 1
	}
	return r
}

// HasPlayer reports whether userID is one of the room's two players.
func (r *Room) HasPlayer(userID string) bool {
	return userID == r.Player1 || userID == r.Player2
}

// Opponent returns the other player of the room.
func (r *Room) Opponent(userID string) string {
	if userID == r.Player1 {
		return r.Player2
	}
	return r.Player1
}

// Symbol returns the TicTacToe mark assigned to userID; host is always X.
func (r *Room) Symbol(userID string) string {
	if userID == r.Player1 {
		return SymbolX
	}
	return SymbolO
}

func (r *Room) boardCopy() []string {
	cp := make([]string, len(r.Board))
	copy(cp, r.Board)
	return cp
}

func (r *Room) movesCopy() []RoundRecord {
	cp := make([]RoundRecord, len(r.Moves))
	copy(cp, r.Moves)
	return cp
}

func (r *Room) pointsCopy() map[string]int {
	cp := make(map[string]int, len(r.Points))
	for k, v := range r.Points {
		cp[k] = v
	}
	return cp
}

// synthesizeRoomID derives a unique room id from both players plus a
// timestamp so repeated pairings of the same users never collide.
func synthesizeRoomID(gt GameType, player1, player2 string) string {
	prefix := "room"
	if gt == GameTicTacToe {
		prefix = "ttt-room"
	}
	return fmt.Sprintf("%s-%s-%s-%d", prefix, player1, player2, time.Now().UnixMilli())
}
