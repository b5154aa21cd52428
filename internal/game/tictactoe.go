package game

import (
	"context"
	"log"

	"github.com/playarena/backend/internal/gateway"
)

// winningLines are the eight three-in-a-row index triples of the board.
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// checkWinner returns "X" or "O" for a completed line, "draw" for a full
// board with no line, and "" while the round is still open.
func checkWinner(board []string) string {
	for _, line := range winningLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != "" && a == b && b == c {
			return a
		}
	}
	for _, cell := range board {
		if cell == "" {
			return ""
		}
	}
	return "draw"
}

// PlaceMove applies a TicTacToe placement. Out-of-turn, out-of-range and
// occupied-cell attempts are rejected before any state changes, leaving the
// running turn timer intact.
func (c *Coordinator) PlaceMove(roomID, userID string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok || room.GameType != GameTicTacToe || room.Finished || !room.HasPlayer(userID) {
		return
	}
	if room.CurrentTurn != userID {
		return
	}
	if index < 0 || index > 8 || room.Board[index] != "" {
		return
	}

	c.cancelRoomTimer(room)

	symbol := room.Symbol(userID)
	room.Board[index] = symbol
	idx := index
	room.Moves = append(room.Moves, RoundRecord{
		Round:  room.Round,
		Index:  &idx,
		Symbol: symbol,
		Player: userID,
		Board:  room.boardCopy(),
	})

	outcome := checkWinner(room.Board)
	switch outcome {
	case symbol:
		c.finishTTTRoundLocked(room, userID, false)
	case "draw":
		c.finishTTTRoundLocked(room, "", true)
	default:
		next := room.Opponent(userID)
		c.notifier.ToRoom(room.ID, Event{Type: EventMoveMade, Data: MoveMadeData{
			RoomID:        room.ID,
			Board:         room.boardCopy(),
			CurrentPlayer: next,
		}})
		c.armTurnTimer(room, next)
		c.emitTimerStart(room, next)
		c.saveSnapshot(room)
	}
}

// ReportTimeout lets a client report that its own countdown elapsed before
// the server timer fired. Only the player whose turn it is may report; the
// effect is the same as the server timeout, a turn pass.
func (c *Coordinator) ReportTimeout(roomID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok || room.GameType != GameTicTacToe || room.Finished || room.CurrentTurn != userID {
		return
	}
	c.cancelRoomTimer(room)
	c.passTTTTurn(room, userID)
}

// passTTTTurn is the TicTacToe timeout action: the turn moves to the
// opponent with the board untouched. No round resolution happens on a
// TicTacToe timeout.
func (c *Coordinator) passTTTTurn(room *Room, player string) {
	next := room.Opponent(player)
	c.notifier.ToRoom(room.ID, Event{Type: EventMoveMade, Data: MoveMadeData{
		RoomID:        room.ID,
		Board:         room.boardCopy(),
		CurrentPlayer: next,
	}})
	c.armTurnTimer(room, next)
	c.emitTimerStart(room, next)
}

// finishTTTRoundLocked closes a round after a winning line or a full board:
// scores, match completion check, broadcasts, and the delayed board reset
// for the next round. The host opens every round. Callers must hold c.mu.
func (c *Coordinator) finishTTTRoundLocked(room *Room, roundWinner string, isDraw bool) {
	winnerField := roundWinner
	if isDraw {
		winnerField = "draw"
	} else {
		room.Points[roundWinner]++
	}

	matchWinner := ""
	if !isDraw && room.Points[roundWinner] >= tttTargetScore {
		matchWinner = roundWinner
		room.Finished = true
	}

	log.Printf("[TTT] Room %s round %d over: winner=%s draw=%t finished=%t",
		room.ID, room.Round, winnerField, isDraw, room.Finished)

	scores := room.pointsCopy()
	c.saveTTTRoundAsync(room, winnerField, matchWinner, scores)

	c.notifier.ToRoom(room.ID, Event{Type: EventMoveMade, Data: MoveMadeData{
		RoomID:        room.ID,
		Board:         room.boardCopy(),
		CurrentPlayer: room.Player1,
		Winner:        winnerField,
		IsDraw:        isDraw,
	}})
	c.notifier.ToRoom(room.ID, Event{Type: EventGameOver, Data: RoundOverData{
		RoomID:       room.ID,
		GameType:     GameTicTacToe,
		Winner:       winnerField,
		IsDraw:       isDraw,
		Scores:       scores,
		GameFinished: room.Finished,
	}})

	if room.Finished {
		c.notifier.ToRoom(room.ID, Event{Type: EventGameFinished, Data: MatchFinishedData{
			RoomID:      room.ID,
			GameType:    GameTicTacToe,
			Winner:      matchWinner,
			FinalScores: scores,
		}})
		c.deleteSnapshot(room.ID)
		c.destroyRoom(room)
		return
	}

	c.saveSnapshot(room)

	// The final board stays on screen briefly, then the next round opens
	// with a fresh board and the host to move.
	c.scheduleRoomTask(room, c.settings.TTTRoundDelay, func(r *Room) {
		r.Board = make([]string, 9)
		r.Round++
		c.notifier.ToRoom(r.ID, Event{Type: EventMoveMade, Data: MoveMadeData{
			RoomID:        r.ID,
			Board:         r.boardCopy(),
			CurrentPlayer: r.Player1,
		}})
		c.armTurnTimer(r, r.Player1)
		c.emitTimerStart(r, r.Player1)
		c.saveSnapshot(r)
	})
}

// saveTTTRoundAsync persists the round outcome off the lock. A failed save
// of a finished match re-broadcasts the final result with saveError set.
// Callers must hold c.mu.
func (c *Coordinator) saveTTTRoundAsync(room *Room, roundWinner, matchWinner string, scores map[string]int) {
	roomID := room.ID
	round := room.Round
	lastMove := room.Moves[len(room.Moves)-1]
	moves := room.movesCopy()
	betAmount := room.BetAmount
	isFree := room.IsFreeGame
	player1, player2 := room.Player1, room.Player2

	go func() {
		var saveErr error

		if c.gateway != nil {
			ctx, cancel := context.WithTimeout(context.Background(), c.settings.GatewayTimeout)
			defer cancel()

			saveErr = c.gateway.SaveResult(ctx, string(GameTicTacToe), gateway.SaveResultRequest{
				RoomID: roomID,
				Winner: matchWinner,
				Moves:  moves,
			})
			if saveErr != nil {
				log.Printf("[GATEWAY] Failed to save round result for room %s: %v", roomID, saveErr)
			}

			if matchWinner != "" && !isFree && betAmount > 0 {
				loser := player1
				if matchWinner == player1 {
					loser = player2
				}
				if err := c.gateway.SettleBet(ctx, gateway.SettleBetRequest{
					RoomID:    roomID,
					WinnerID:  matchWinner,
					LoserID:   loser,
					BetAmount: betAmount,
					GameType:  string(GameTicTacToe),
				}); err != nil {
					log.Printf("[GATEWAY] Failed to settle bet for room %s: %v", roomID, err)
				}
			}
		}

		if c.journal != nil {
			if err := c.journal.RecordRoundResult(roomID, round, roundWinner, lastMove); err != nil {
				log.Printf("[JOURNAL] Failed to record round for room %s: %v", roomID, err)
			}
			if matchWinner != "" {
				if err := c.journal.RecordMatchFinished(roomID, matchWinner); err != nil {
					log.Printf("[JOURNAL] Failed to record match finish for room %s: %v", roomID, err)
				}
			}
		}

		if matchWinner != "" && saveErr != nil {
			c.notifier.ToRoom(roomID, Event{Type: EventGameFinished, Data: MatchFinishedData{
				RoomID:      roomID,
				GameType:    GameTicTacToe,
				Winner:      matchWinner,
				FinalScores: scores,
				SaveError:   true,
			}})
		}
	}()
}
