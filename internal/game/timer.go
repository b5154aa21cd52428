package game

import (
	"log"
	"time"
)

// scheduleRoomTask arms the room's single delayed action, cancelling any
// prior one first. The callback re-acquires the coordinator mutex and
// no-ops if the room is gone, finished, or the task has been superseded.
// Callers must hold c.mu.
func (c *Coordinator) scheduleRoomTask(room *Room, d time.Duration, task func(r *Room)) {
	if room.timer != nil {
		room.timer.Stop()
		room.timer = nil
	}
	room.timerSeq++
	seq := room.timerSeq
	roomID := room.ID

	room.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		r, ok := c.rooms[roomID]
		if !ok || r.timerSeq != seq || r.Finished {
			return // superseded or room torn down
		}
		r.timer = nil
		task(r)
	})
}

// cancelRoomTimer stops the room's pending delayed action. Bumping the
// sequence also neutralizes a callback that already fired and is waiting
// on the mutex. Callers must hold c.mu.
func (c *Coordinator) cancelRoomTimer(room *Room) {
	if room.timer != nil {
		room.timer.Stop()
		room.timer = nil
	}
	room.timerSeq++
}

// armTurnTimer schedules the game-specific timeout action for player's turn.
// Callers must hold c.mu.
func (c *Coordinator) armTurnTimer(room *Room, player string) {
	room.CurrentTurn = player
	switch room.GameType {
	case GameRPS:
		c.scheduleRoomTask(room, c.settings.RPSTurnTimeout, func(r *Room) {
			log.Printf("[TIMER] Turn expired for player %s in room %s", player, r.ID)
			c.resolveRPSTimeout(r, player)
		})
	case GameTicTacToe:
		c.scheduleRoomTask(room, c.settings.TTTTurnTimeout, func(r *Room) {
			log.Printf("[TIMER] Turn expired for player %s in room %s", player, r.ID)
			c.passTTTTurn(r, player)
		})
	}
}

// emitTimerStart broadcasts the fresh countdown for player's turn.
func (c *Coordinator) emitTimerStart(room *Room, player string) {
	timeout := c.settings.RPSTurnTimeout
	if room.GameType == GameTicTacToe {
		timeout = c.settings.TTTTurnTimeout
	}
	c.notifier.ToRoom(room.ID, Event{Type: EventTimerStart, Data: TimerStartData{
		RoomID:        room.ID,
		CurrentPlayer: player,
		TimeLeft:      int(timeout.Seconds()),
	}})
}
