package game

import (
	"context"
	"log"
	"time"

	"github.com/playarena/backend/internal/gateway"
)

// RequestMatch implements random matchmaking with a single waiting slot per
// game type. Pairing requires identical bet terms; a mismatch bounces the
// requester and leaves the waiting player in place.
func (c *Coordinator) RequestMatch(userID string, gt GameType, betAmount int, isFreeGame bool) {
	if !gt.Valid() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.online[userID]; !ok {
		return
	}

	slot := c.waiting[gt]
	if slot == nil || slot.UserID == userID {
		// Re-requesting refreshes the slot's bet terms.
		c.waiting[gt] = &WaitingSlot{UserID: userID, BetAmount: betAmount, IsFreeGame: isFreeGame, Since: time.Now()}
		c.notifier.ToUser(userID, Event{Type: EventWaiting, Data: WaitingData{GameType: gt}})
		return
	}

	if slot.BetAmount != betAmount || slot.IsFreeGame != isFreeGame {
		c.notifier.ToUser(userID, Event{Type: EventBetMismatch, Data: BetMismatchData{
			Message: "Bet amount does not match your opponent's",
		}})
		return
	}

	roomID := synthesizeRoomID(gt, slot.UserID, userID)
	if err := c.createPersistedRoom(roomID, gt, slot.UserID, userID, betAmount, isFreeGame, false); err != nil {
		// The waiting player stays queued; only the requester is told.
		log.Printf("[MATCH] Failed to create room %s: %v", roomID, err)
		c.notifier.ToUser(userID, Event{Type: EventGameError, Data: GameErrorData{Message: "Failed to create game room"}})
		return
	}

	c.waiting[gt] = nil
	c.startRoomLocked(roomID, gt, slot.UserID, userID, betAmount, isFreeGame, false)
}

// CancelMatch frees the waiting slot if this user holds it; no-op otherwise.
func (c *Coordinator) CancelMatch(userID string, gt GameType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slot := c.waiting[gt]; slot != nil && slot.UserID == userID {
		c.waiting[gt] = nil
		log.Printf("[MATCH] User %s left the %s queue", userID, gt)
	}
}

// createPersistedRoom calls the platform API to create the durable room
// record. With no gateway configured (tests, local dev) the room is
// in-memory only.
func (c *Coordinator) createPersistedRoom(roomID string, gt GameType, player1, player2 string, betAmount int, isFreeGame, fromInvite bool) error {
	if c.gateway == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.settings.GatewayTimeout)
	defer cancel()
	return c.gateway.CreateRoom(ctx, string(gt), gateway.CreateRoomRequest{
		RoomID:       roomID,
		Player1:      player1,
		Player2:      player2,
		BetAmount:    betAmount,
		IsFreeGame:   isFreeGame,
		IsInvitation: fromInvite,
	})
}

// startRoomLocked wires up a freshly paired room: joins both connections to
// the room channel, announces the pairing, initializes state, and arms the
// first mover's timer. player1 is the first mover (the previously waiting
// player, or the inviter). Callers must hold c.mu.
func (c *Coordinator) startRoomLocked(roomID string, gt GameType, player1, player2 string, betAmount int, isFreeGame, fromInvite bool) {
	room := newRoom(roomID, gt, player1, player2, betAmount, isFreeGame, fromInvite)
	c.rooms[roomID] = room

	c.notifier.JoinRoom(roomID, player1, player2)

	p1Info := c.userInfoLocked(player1)
	p2Info := c.userInfoLocked(player2)
	c.notifier.ToUser(player1, Event{Type: EventGameFound, Data: GameFoundData{
		RoomID: roomID, GameType: gt, Opponent: p2Info, PlayerTurn: p1Info, IsInvitedGame: fromInvite,
	}})
	c.notifier.ToUser(player2, Event{Type: EventGameFound, Data: GameFoundData{
		RoomID: roomID, GameType: gt, Opponent: p1Info, PlayerTurn: p1Info, IsInvitedGame: fromInvite,
	}})

	log.Printf("[MATCH] Room %s created: %s vs %s (game=%s bet=%d free=%t invite=%t)",
		roomID, player1, player2, gt, betAmount, isFreeGame, fromInvite)

	if c.journal != nil {
		go func() {
			if err := c.journal.RecordRoomCreated(roomID, string(gt), player1, player2, betAmount, isFreeGame, fromInvite); err != nil {
				log.Printf("[JOURNAL] Failed to record room %s: %v", roomID, err)
			}
		}()
	}
	c.saveSnapshot(room)

	c.armTurnTimer(room, player1)
	c.emitTimerStart(room, player1)
}

// userInfoLocked returns the presence entry, falling back to a bare id for
// users whose entry vanished mid-handler. Callers must hold c.mu.
func (c *Coordinator) userInfoLocked(userID string) UserInfo {
	if u, ok := c.online[userID]; ok {
		return *u
	}
	return UserInfo{UserID: userID}
}
