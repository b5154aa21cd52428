package game

import "time"

// SendChat relays an in-room message to both players. Messages from users
// outside the room are dropped.
func (c *Coordinator) SendChat(roomID, userID, message string) {
	if message == "" {
		return
	}

	c.mu.Lock()
	room, ok := c.rooms[roomID]
	if !ok || !room.HasPlayer(userID) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.notifier.ToRoom(roomID, Event{Type: EventGameMessage, Data: GameMessageData{
		RoomID:    roomID,
		Message:   message,
		From:      userID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}})
}
