package game

import (
	"context"
	"log"
	"sort"
)

// Identify upserts the user's presence entry, rebroadcasts the online list
// and flushes any invitations that arrived while the user was away.
// Reconnects simply overwrite the previous entry.
func (c *Coordinator) Identify(userID, userName, nickName string) {
	if userID == "" {
		return
	}

	c.mu.Lock()
	c.online[userID] = &UserInfo{UserID: userID, UserName: userName, NickName: nickName}
	users := c.onlineListLocked()
	pending := make([]GameInvitationData, 0, len(c.invites[userID]))
	for _, inv := range c.invites[userID] {
		pending = append(pending, inv.eventData())
	}
	c.mu.Unlock()

	log.Printf("[PRESENCE] User %s identified (%s)", userID, userName)

	c.notifier.ToAll(Event{Type: EventOnlineUsers, Data: users})
	for _, data := range pending {
		c.notifier.ToUser(userID, Event{Type: EventGameInvitation, Data: data})
	}

	c.trackPresence(userID, true)
}

// Disconnect removes the user's presence entry, tears down every
// unfinished room the user is part of (notifying the opponent), and frees
// any waiting slot the user held. Abandoned matches trigger no payout or
// result save; only the local journal marks the room abandoned.
func (c *Coordinator) Disconnect(userID string) {
	if userID == "" {
		return
	}

	c.mu.Lock()
	delete(c.online, userID)

	type teardown struct {
		roomID   string
		opponent string
	}
	var torn []teardown
	for _, room := range c.rooms {
		if !room.HasPlayer(userID) || room.Finished {
			continue
		}
		torn = append(torn, teardown{roomID: room.ID, opponent: room.Opponent(userID)})
		c.destroyRoom(room)
	}

	for gt, slot := range c.waiting {
		if slot != nil && slot.UserID == userID {
			c.waiting[gt] = nil
		}
	}

	users := c.onlineListLocked()
	c.mu.Unlock()

	log.Printf("[PRESENCE] User %s disconnected (%d unfinished rooms torn down)", userID, len(torn))

	for _, t := range torn {
		c.notifier.ToUser(t.opponent, Event{Type: EventOpponentDisconnected, Data: OpponentDisconnectedData{
			RoomID:  t.roomID,
			Message: "Your opponent left the game",
		}})
		c.notifier.CloseRoom(t.roomID)
		c.deleteSnapshot(t.roomID)
		if c.journal != nil {
			go func(roomID string) {
				if err := c.journal.RecordRoomAbandoned(roomID); err != nil {
					log.Printf("[JOURNAL] Failed to mark room %s abandoned: %v", roomID, err)
				}
			}(t.roomID)
		}
	}

	c.notifier.ToAll(Event{Type: EventOnlineUsers, Data: users})
	c.trackPresence(userID, false)
}

// IsOnline reports whether the user currently has a presence entry.
func (c *Coordinator) IsOnline(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.online[userID]
	return ok
}

// onlineListLocked snapshots the online users sorted by id so repeated
// broadcasts are stable. Callers must hold c.mu.
func (c *Coordinator) onlineListLocked() []UserInfo {
	users := make([]UserInfo, 0, len(c.online))
	for _, u := range c.online {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users
}

// trackPresence mirrors the online set into redis for ops visibility.
func (c *Coordinator) trackPresence(userID string, online bool) {
	if c.rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.settings.GatewayTimeout)
		defer cancel()
		var err error
		if online {
			err = c.rdb.SAdd(ctx, "arena:online", userID).Err()
		} else {
			err = c.rdb.SRem(ctx, "arena:online", userID).Err()
		}
		if err != nil {
			log.Printf("[PRESENCE] Redis presence update failed for %s: %v", userID, err)
		}
	}()
}
