package game

import (
	"testing"
	"time"
)

func inviteSettings() Settings {
	s := testSettings()
	s.InviteTTL = 30 * time.Millisecond
	return s
}

func sendTestInvite(t *testing.T, c *Coordinator, n *fakeNotifier, from, to string) string {
	t.Helper()
	c.Invite(from, to, GameRPS, "Rock Paper Scissors", "let's play", 0, true)
	ev, ok := n.find("user:"+to, EventGameInvitation)
	if !ok {
		t.Fatal("invitation not delivered")
	}
	return ev.Data.(GameInvitationData).InvitationID
}

func TestInviteDeliversToBothParties(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")

	id := sendTestInvite(t, c, n, "a", "b")

	ev, ok := n.find("user:a", EventInvitationSent)
	if !ok {
		t.Fatal("inviter got no confirmation")
	}
	sent := ev.Data.(InvitationSentData)
	if sent.InvitationID != id || sent.To != "b" {
		t.Errorf("confirmation mismatch: %+v", sent)
	}
}

func TestInviteOfflineRecipient(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")

	c.Invite("a", "b", GameRPS, "", "", 0, true)

	ev, ok := n.find("user:a", EventInvitationError)
	if !ok {
		t.Fatal("inviter should get an error for an offline friend")
	}
	if code := ev.Data.(InvitationErrorData).Code; code != InviteErrOffline {
		t.Errorf("error code = %s, want %s", code, InviteErrOffline)
	}
}

func TestAcceptStartsRoomWithInviterFirst(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	id := sendTestInvite(t, c, n, "a", "b")

	c.AcceptInvitation("b", id)

	evA, okA := n.find("user:a", EventGameFound)
	evB, okB := n.find("user:b", EventGameFound)
	if !okA || !okB {
		t.Fatal("both players should receive gameFound after accept")
	}
	dataA := evA.Data.(GameFoundData)
	dataB := evB.Data.(GameFoundData)
	if dataA.PlayerTurn.UserID != "a" || dataB.PlayerTurn.UserID != "a" {
		t.Error("inviter should open an invited match")
	}
	if !dataA.IsInvitedGame || !dataB.IsInvitedGame {
		t.Error("invited-game flag missing")
	}
	if room := c.testRoom(dataA.RoomID); room == nil || !room.FromInvite || room.Player1 != "a" {
		t.Errorf("room state wrong after accept: %+v", room)
	}
}

func TestAcceptUnknownInvitation(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("b", "B", "b")

	c.AcceptInvitation("b", "inv-nope")

	ev, ok := n.find("user:b", EventInvitationError)
	if !ok {
		t.Fatal("accepting an unknown invitation should fail")
	}
	if code := ev.Data.(InvitationErrorData).Code; code != InviteErrInvalidExpired {
		t.Errorf("error code = %s, want %s", code, InviteErrInvalidExpired)
	}
}

func TestAcceptIsSingleUse(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	id := sendTestInvite(t, c, n, "a", "b")

	c.AcceptInvitation("b", id)
	c.AcceptInvitation("b", id)

	ev, ok := n.find("user:b", EventInvitationError)
	if !ok {
		t.Fatal("second accept should fail")
	}
	if code := ev.Data.(InvitationErrorData).Code; code != InviteErrInvalidExpired {
		t.Errorf("error code = %s, want %s", code, InviteErrInvalidExpired)
	}
	if n.count("user:b", EventGameFound) != 1 {
		t.Error("second accept must not start another room")
	}
}

func TestAcceptWithInviterGone(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	id := sendTestInvite(t, c, n, "a", "b")

	c.Disconnect("a")
	c.AcceptInvitation("b", id)

	ev, ok := n.find("user:b", EventInvitationError)
	if !ok {
		t.Fatal("accept with inviter offline should fail")
	}
	if code := ev.Data.(InvitationErrorData).Code; code != InviteErrInviterOffline {
		t.Errorf("error code = %s, want %s", code, InviteErrInviterOffline)
	}

	// The invitation is discarded; a retry now reports invalid.
	c.AcceptInvitation("b", id)
	found := 0
	for _, se := range n.snapshot() {
		if se.target == "user:b" && se.ev.Type == EventInvitationError &&
			se.ev.Data.(InvitationErrorData).Code == InviteErrInvalidExpired {
			found++
		}
	}
	if found != 1 {
		t.Error("invitation should be discarded after inviter-offline failure")
	}
}

func TestAcceptAfterExpiry(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, inviteSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	id := sendTestInvite(t, c, n, "a", "b")

	n.waitFor(t, func(se sentEvent) {
		return se.target == "user:a" && se.ev.Type == EventInvitationExpired
	})
	if _, ok := n.find("user:b", EventInvitationExpired); !ok {
		t.Error("recipient should also hear about the expiry")
	}

	c.AcceptInvitation("b", id)
	ev, ok := n.find("user:b", EventInvitationError)
	if !ok {
		t.Fatal("accept after expiry should fail")
	}
	if code := ev.Data.(InvitationErrorData).Code; code != InviteErrInvalidExpired {
		t.Errorf("error code = %s, want %s", code, InviteErrInvalidExpired)
	}
}

func TestRejectNotifiesInviter(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	id := sendTestInvite(t, c, n, "a", "b")

	c.RejectInvitation("b", id)

	ev, ok := n.find("user:a", EventInvitationRejected)
	if !ok {
		t.Fatal("inviter not told about the rejection")
	}
	data := ev.Data.(InvitationRejectedData)
	if data.By == nil || data.By.UserID != "b" {
		t.Errorf("rejection should name the rejecter, got %+v", data)
	}
	if ev, ok := n.find("user:b", EventInvitationRejected); !ok || ev.Data.(InvitationRejectedData).Status != "success" {
		t.Error("rejecter should get a success confirmation")
	}

	// Rejected invitations cannot be accepted anymore.
	c.AcceptInvitation("b", id)
	if _, ok := n.find("user:b", EventInvitationError); !ok {
		t.Error("accept after reject should fail")
	}
}

func TestRejectUnknownInvitationIsSilent(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")

	c.RejectInvitation("b", "inv-nope")

	if n.count("user:a", EventInvitationRejected)+n.count("user:b", EventInvitationRejected) != 0 {
		t.Error("rejecting an unknown invitation must be a silent no-op")
	}
}

func TestPendingInvitesRedeliveredOnIdentify(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	id := sendTestInvite(t, c, n, "a", "b")

	c.Identify("b", "B", "b")

	if n.count("user:b", EventGameInvitation) != 2 {
		t.Errorf("pending invitation should be redelivered on identify, got %d deliveries",
			n.count("user:b", EventGameInvitation))
	}
	ev, _ := n.find("user:b", EventGameInvitation)
	if ev.Data.(GameInvitationData).InvitationID != id {
		t.Error("redelivered invitation id mismatch")
	}
}

func TestAcceptKeepsInvitationWhenCreateFails(t *testing.T) {
	n := newFakeNotifier()
	gw := &fakeGateway{}
	c := newTestCoordinator(n, gw, nil, testSettings())
	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	id := sendTestInvite(t, c, n, "a", "b")

	gw.setFailCreate(true)
	c.AcceptInvitation("b", id)

	ev, ok := n.find("user:b", EventInvitationError)
	if !ok {
		t.Fatal("accept should surface the create failure")
	}
	if code := ev.Data.(InvitationErrorData).Code; code != InviteErrCreateFailed {
		t.Errorf("error code = %s, want %s", code, InviteErrCreateFailed)
	}

	// The invitation stays pending for a retry.
	gw.setFailCreate(false)
	c.AcceptInvitation("b", id)
	if n.count("user:b", EventGameFound) != 1 {
		t.Error("retry after recovered platform should start the room")
	}
}
