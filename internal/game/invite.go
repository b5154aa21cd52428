package game

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// Invitation is a pending game invitation addressed to one recipient.
// Expiry is a per-invitation scheduled task; accept/reject stop it.
type Invitation struct {
	ID         string
	From       UserInfo
	To         string
	GameType   GameType
	GameName   string
	Message    string
	BetAmount  int
	IsFreeGame bool
	CreatedAt  time.Time

	expire *time.Timer
}

func (inv *Invitation) eventData() GameInvitationData {
	return GameInvitationData{
		InvitationID: inv.ID,
		From:         inv.From,
		GameType:     inv.GameType,
		GameName:     inv.GameName,
		Message:      inv.Message,
		BetAmount:    inv.BetAmount,
		IsFreeGame:   inv.IsFreeGame,
	}
}

// Invite creates a pending invitation for friendID and delivers it. Fails
// with OFFLINE when the recipient has no presence entry.
func (c *Coordinator) Invite(fromID, friendID string, gt GameType, gameName, message string, betAmount int, isFreeGame bool) {
	if !gt.Valid() {
		gt = GameRPS
	}

	c.mu.Lock()
	from, ok := c.online[fromID]
	if !ok {
		c.mu.Unlock()
		return
	}
	if _, ok := c.online[friendID]; !ok {
		c.mu.Unlock()
		c.notifier.ToUser(fromID, Event{Type: EventInvitationError, Data: InvitationErrorData{
			Code: InviteErrOffline, Message: "Your friend is not online",
		}})
		return
	}

	inv := &Invitation{
		ID:         "inv-" + uuid.NewString(),
		From:       *from,
		To:         friendID,
		GameType:   gt,
		GameName:   gameName,
		Message:    message,
		BetAmount:  betAmount,
		IsFreeGame: isFreeGame,
		CreatedAt:  time.Now(),
	}
	inv.expire = time.AfterFunc(c.settings.InviteTTL, func() { c.expireInvitation(friendID, inv.ID) })
	c.invites[friendID] = append(c.invites[friendID], inv)
	data := inv.eventData()
	c.mu.Unlock()

	log.Printf("[INVITE] %s invited %s to %s (id=%s)", fromID, friendID, gt, inv.ID)

	c.notifier.ToUser(friendID, Event{Type: EventGameInvitation, Data: data})
	c.notifier.ToUser(fromID, Event{Type: EventInvitationSent, Data: InvitationSentData{To: friendID, InvitationID: inv.ID}})
}

// AcceptInvitation converts a pending invitation into a room. The inviter
// is the first mover. Fails with INVALID_OR_EXPIRED when the invitation is
// not in the accepter's own pending list, and with INVITER_OFFLINE (also
// discarding the invitation) when the inviter has since gone away.
func (c *Coordinator) AcceptInvitation(userID, invitationID string) {
	c.mu.Lock()

	inv := c.findInvitationLocked(userID, invitationID)
	if inv == nil {
		c.mu.Unlock()
		c.notifier.ToUser(userID, Event{Type: EventInvitationError, Data: InvitationErrorData{
			Code: InviteErrInvalidExpired, Message: "Invitation is invalid or has expired",
		}})
		return
	}

	inviterID := inv.From.UserID
	if _, ok := c.online[inviterID]; !ok {
		c.removeInvitationLocked(userID, invitationID)
		c.mu.Unlock()
		c.notifier.ToUser(userID, Event{Type: EventInvitationError, Data: InvitationErrorData{
			Code: InviteErrInviterOffline, Message: "The inviter is no longer online",
		}})
		return
	}

	roomID := synthesizeRoomID(inv.GameType, inviterID, userID)
	if err := c.createPersistedRoom(roomID, inv.GameType, inviterID, userID, inv.BetAmount, inv.IsFreeGame, true); err != nil {
		// The invitation stays pending; the accepter may retry until expiry.
		c.mu.Unlock()
		log.Printf("[INVITE] Failed to create invited room %s: %v", roomID, err)
		c.notifier.ToUser(userID, Event{Type: EventInvitationError, Data: InvitationErrorData{
			Code: InviteErrCreateFailed, Message: "Failed to create game room",
		}})
		return
	}

	c.removeInvitationLocked(userID, invitationID)
	c.startRoomLocked(roomID, inv.GameType, inviterID, userID, inv.BetAmount, inv.IsFreeGame, true)
	c.mu.Unlock()

	log.Printf("[INVITE] %s accepted invitation %s from %s", userID, invitationID, inviterID)
}

// RejectInvitation removes the invitation and tells the inviter who turned
// it down. Silently no-ops when the invitation is unknown or expired.
func (c *Coordinator) RejectInvitation(userID, invitationID string) {
	c.mu.Lock()
	inv := c.findInvitationLocked(userID, invitationID)
	if inv == nil {
		c.mu.Unlock()
		return
	}
	c.removeInvitationLocked(userID, invitationID)
	rejecter := c.userInfoLocked(userID)
	inviterID := inv.From.UserID
	_, inviterOnline := c.online[inviterID]
	c.mu.Unlock()

	log.Printf("[INVITE] %s rejected invitation %s from %s", userID, invitationID, inviterID)

	if inviterOnline {
		c.notifier.ToUser(inviterID, Event{Type: EventInvitationRejected, Data: InvitationRejectedData{
			InvitationID: invitationID, By: &rejecter,
		}})
	}
	c.notifier.ToUser(userID, Event{Type: EventInvitationRejected, Data: InvitationRejectedData{
		InvitationID: invitationID, Status: "success",
	}})
}

// expireInvitation is the TTL task: it removes a still-pending invitation
// and notifies both parties. If the invitation was already accepted or
// rejected it finds nothing and no-ops.
func (c *Coordinator) expireInvitation(recipientID, invitationID string) {
	c.mu.Lock()
	inv := c.findInvitationLocked(recipientID, invitationID)
	if inv == nil {
		c.mu.Unlock()
		return
	}
	c.removeInvitationLocked(recipientID, invitationID)
	inviterID := inv.From.UserID
	_, inviterOnline := c.online[inviterID]
	_, recipientOnline := c.online[recipientID]
	c.mu.Unlock()

	log.Printf("[INVITE] Invitation %s expired", invitationID)

	if inviterOnline {
		c.notifier.ToUser(inviterID, Event{Type: EventInvitationExpired, Data: InvitationExpiredData{InvitationID: invitationID}})
	}
	if recipientOnline {
		c.notifier.ToUser(recipientID, Event{Type: EventInvitationExpired, Data: InvitationExpiredData{InvitationID: invitationID}})
	}
}

// findInvitationLocked looks up an invitation in the recipient's own
// pending list. Callers must hold c.mu.
func (c *Coordinator) findInvitationLocked(recipientID, invitationID string) *Invitation {
	for _, inv := range c.invites[recipientID] {
		if inv.ID == invitationID {
			return inv
		}
	}
	return nil
}

// removeInvitationLocked drops the invitation and stops its expiry task.
// Callers must hold c.mu.
func (c *Coordinator) removeInvitationLocked(recipientID, invitationID string) {
	list := c.invites[recipientID]
	for i, inv := range list {
		if inv.ID == invitationID {
			if inv.expire != nil {
				inv.expire.Stop()
			}
			c.invites[recipientID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(c.invites[recipientID]) == 0 {
		delete(c.invites, recipientID)
	}
}
