package game

import (
	"context"
	"errors"
	"log"

	"github.com/playarena/backend/internal/gateway"
)

// ErrInvalidMove is returned for a malformed move payload; the ws layer
// reports it to the sender without touching room state.
var ErrInvalidMove = errors.New("invalid move")

// SubmitMove records a Rock-Paper-Scissors decision. The round resolves
// once both players have either moved or been marked timed out; until then
// the opponent is prompted and their timer armed.
func (c *Coordinator) SubmitMove(roomID, userID, move string) error {
	if !ValidRPSMove(move) {
		return ErrInvalidMove
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok || room.GameType != GameRPS || room.Finished || !room.HasPlayer(userID) {
		return nil
	}
	if _, decided := room.pending[userID]; decided {
		return nil // already moved or timed out this round
	}

	c.cancelRoomTimer(room)
	m := move
	room.pending[userID] = &m

	opponent := room.Opponent(userID)
	if _, decided := room.pending[opponent]; !decided {
		room.CurrentTurn = opponent
		c.notifier.ToRoom(roomID, Event{Type: EventWaitingForOpponent, Data: WaitingForOpponentData{
			RoomID: roomID, CurrentPlayer: opponent,
		}})
		c.armTurnTimer(room, opponent)
		c.emitTimerStart(room, opponent)
		return nil
	}

	c.resolveRPSRoundLocked(room, userID)
	return nil
}

// resolveRPSTimeout handles a turn timer firing: the mover is marked timed
// out (nil decision). If the opponent already decided the round resolves
// immediately; otherwise the turn passes so the opponent must also move or
// time out before the round can complete.
func (c *Coordinator) resolveRPSTimeout(room *Room, player string) {
	if _, decided := room.pending[player]; decided {
		return
	}
	room.pending[player] = nil

	opponent := room.Opponent(player)
	if _, decided := room.pending[opponent]; !decided {
		room.CurrentTurn = opponent
		c.notifier.ToRoom(room.ID, Event{Type: EventWaitingForOpponent, Data: WaitingForOpponentData{
			RoomID: room.ID, CurrentPlayer: opponent,
		}})
		c.armTurnTimer(room, opponent)
		c.emitTimerStart(room, opponent)
		return
	}

	c.resolveRPSRoundLocked(room, player)
}

// resolveRPSRoundLocked classifies the completed round, applies points,
// checks match completion, kicks off the async save, broadcasts the round
// result and schedules the next round after the result-display delay.
// lastActor is the player whose move or timeout completed the round.
// Callers must hold c.mu.
func (c *Coordinator) resolveRPSRoundLocked(room *Room, lastActor string) {
	d1 := room.pending[room.Player1]
	d2 := room.pending[room.Player2]

	var result, winner, timeoutPlayer string
	switch {
	case d1 == nil && d2 == nil:
		result, winner = ResultDraw, ResultDraw
	case d1 == nil:
		result, winner, timeoutPlayer = ResultTimeout, room.Player2, room.Player1
	case d2 == nil:
		result, winner, timeoutPlayer = ResultTimeout, room.Player1, room.Player2
	default:
		result = rpsOutcome(*d1, *d2)
		switch result {
		case ResultPlayer1:
			winner = room.Player1
		case ResultPlayer2:
			winner = room.Player2
		default:
			winner = ResultDraw
		}
	}

	roundMoves := make(map[string]*string, 2)
	for k, v := range room.pending {
		roundMoves[k] = v
	}
	room.Moves = append(room.Moves, RoundRecord{
		Round:  len(room.Moves) + 1,
		Moves:  roundMoves,
		Result: result,
		Winner: winner,
	})
	if winner != ResultDraw {
		room.Points[winner] += rpsPointsPerRound
	}

	matchWinner := ""
	if room.Points[room.Player1] >= rpsMaxPoints {
		matchWinner = room.Player1
	} else if room.Points[room.Player2] >= rpsMaxPoints {
		matchWinner = room.Player2
	}
	if matchWinner != "" {
		room.Finished = true
	}

	log.Printf("[RPS] Room %s round %d resolved: result=%s winner=%s finished=%t",
		room.ID, len(room.Moves), result, winner, room.Finished)

	points := room.pointsCopy()
	c.saveRoundAsync(room, matchWinner, points)

	if room.Finished {
		c.notifier.ToRoom(room.ID, Event{Type: EventGameFinished, Data: MatchFinishedData{
			RoomID:      room.ID,
			GameType:    GameRPS,
			Winner:      matchWinner,
			FinalPoints: points,
			TotalMoves:  room.movesCopy(),
		}})
	}

	c.notifier.ToRoom(room.ID, Event{Type: EventGameOver, Data: RoundOverData{
		RoomID:        room.ID,
		GameType:      GameRPS,
		Result:        result,
		Winner:        winner,
		GameMoves:     roundMoves,
		Points:        points,
		GameFinished:  room.Finished,
		TimeoutPlayer: timeoutPlayer,
	}})

	room.pending = make(map[string]*string)

	if room.Finished {
		c.deleteSnapshot(room.ID)
		c.destroyRoom(room)
		return
	}
	c.saveSnapshot(room)

	// Next round opens with the loser; a draw hands the turn to whichever
	// player did not complete this round.
	next := room.Opponent(lastActor)
	if winner == room.Player1 || winner == room.Player2 {
		next = room.Opponent(winner)
	}
	room.CurrentTurn = next

	c.notifier.ToRoom(room.ID, Event{Type: EventWaitingForOpponent, Data: WaitingForOpponentData{
		RoomID: room.ID, CurrentPlayer: next,
	}})

	// The client shows the round result for a fixed interval before the
	// next countdown begins.
	c.scheduleRoomTask(room, c.settings.RPSRoundDelay, func(r *Room) {
		c.armTurnTimer(r, next)
		c.emitTimerStart(r, next)
	})
}

// saveRoundAsync persists the round (and final outcome) without blocking
// broadcasts. A failed match-finish save re-broadcasts the final result
// with the saveError flag set. Callers must hold c.mu; the goroutine only
// touches captured copies.
func (c *Coordinator) saveRoundAsync(room *Room, matchWinner string, points map[string]int) {
	roomID := room.ID
	round := len(room.Moves)
	lastRound := room.Moves[len(room.Moves)-1]
	moves := room.movesCopy()
	betAmount := room.BetAmount
	isFree := room.IsFreeGame
	player1, player2 := room.Player1, room.Player2

	go func() {
		var saveErr error

		if c.gateway != nil {
			ctx, cancel := context.WithTimeout(context.Background(), c.settings.GatewayTimeout)
			defer cancel()

			saveErr = c.gateway.SaveResult(ctx, string(GameRPS), gateway.SaveResultRequest{
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
					GameType:  string(GameRPS),
				}); err != nil {
					log.Printf("[GATEWAY] Failed to settle bet for room %s: %v", roomID, err)
				}
			}
		}

		if c.journal != nil {
			if err := c.journal.RecordRoundResult(roomID, round, lastRound.Winner, lastRound); err != nil {
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
				GameType:    GameRPS,
				Winner:      matchWinner,
				FinalPoints: points,
				TotalMoves:  moves,
				SaveError:   true,
			}})
		}
	}()
}

// rpsOutcome applies the cycle rule: rock beats scissors, scissors beats
// paper, paper beats rock.
func rpsOutcome(move1, move2 string) string {
	if move1 == move2 {
		return ResultDraw
	}
	beats := map[string]string{
		MoveRock:     MoveScissors,
		MoveScissors: MovePaper,
		MovePaper:    MoveRock,
	}
	if beats[move1] == move2 {
		return ResultPlayer1
	}
	return ResultPlayer2
}
