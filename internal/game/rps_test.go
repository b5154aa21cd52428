package game

import (
	"errors"
	"testing"
	"time"
)

func TestRPSOutcome(t *testing.T) {
	cases := []struct {
		move1, move2 string
		want         string
	}{
		{MoveRock, MoveRock, ResultDraw},
		{MovePaper, MovePaper, ResultDraw},
		{MoveScissors, MoveScissors, ResultDraw},
		{MoveRock, MoveScissors, ResultPlayer1},
		{MoveScissors, MovePaper, ResultPlayer1},
		{MovePaper, MoveRock, ResultPlayer1},
		{MoveScissors, MoveRock, ResultPlayer2},
		{MovePaper, MoveScissors, ResultPlayer2},
		{MoveRock, MovePaper, ResultPlayer2},
	}
	for _, tc := range cases {
		if got := rpsOutcome(tc.move1, tc.move2); got != tc.want {
			t.Errorf("rpsOutcome(%s, %s) = %s, want %s", tc.move1, tc.move2, got, tc.want)
		}
	}
}

func TestSubmitMoveRejectsInvalidMove(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	if err := c.SubmitMove(roomID, "a", "lizard"); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("expected ErrInvalidMove, got %v", err)
	}
}

func TestFirstMovePassesTurn(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	if err := c.SubmitMove(roomID, "a", MoveRock); err != nil {
		t.Fatal(err)
	}

	ev, ok := n.find("room:"+roomID, EventWaitingForOpponent)
	if !ok {
		t.Fatal("expected waitingForOpponent after the first move")
	}
	if cur := ev.Data.(WaitingForOpponentData).CurrentPlayer; cur != "b" {
		t.Errorf("turn should pass to b, got %s", cur)
	}
	if room := c.testRoom(roomID); room.CurrentTurn != "b" {
		t.Errorf("room turn = %s, want b", room.CurrentTurn)
	}
	if n.count("room:"+roomID, EventGameOver) != 0 {
		t.Error("round must not resolve on a single move")
	}
}

func TestDuplicateDecisionIgnored(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	c.SubmitMove(roomID, "a", MoveRock)
	c.SubmitMove(roomID, "a", MovePaper)

	room := c.testRoom(roomID)
	c.mu.Lock()
	move := room.pending["a"]
	c.mu.Unlock()
	if move == nil || *move != MoveRock {
		t.Errorf("second submission should be ignored, pending = %v", move)
	}
}

func TestRoundResolvesWhenBothMoved(t *testing.T) {
	n := newFakeNotifier()
	j := &fakeJournal{}
	c := newTestCoordinator(n, nil, j, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	c.SubmitMove(roomID, "a", MoveRock)
	c.SubmitMove(roomID, "b", MoveScissors)

	ev, ok := n.find("room:"+roomID, EventGameOver)
	if !ok {
		t.Fatal("round should resolve once both players moved")
	}
	data := ev.Data.(RoundOverData)
	if data.Result != ResultPlayer1 || data.Winner != "a" {
		t.Errorf("result = %s winner = %s, want player1/a", data.Result, data.Winner)
	}
	if data.Points["a"] != 10 || data.Points["b"] != 0 {
		t.Errorf("points = %v, want a:10 b:0", data.Points)
	}
	if data.GameFinished {
		t.Error("10 points must not finish the match")
	}
	if got := *data.GameMoves["a"]; got != MoveRock {
		t.Errorf("move log for a = %s, want rock", got)
	}

	room := c.testRoom(roomID)
	c.mu.Lock()
	moves, pendingLen := len(room.Moves), len(room.pending)
	c.mu.Unlock()
	if moves != 1 {
		t.Errorf("move log length = %d, want 1", moves)
	}
	if pendingLen != 0 {
		t.Error("pending decisions should reset after the round")
	}
}

func TestDrawRoundAwardsNoPoints(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	c.SubmitMove(roomID, "a", MovePaper)
	c.SubmitMove(roomID, "b", MovePaper)

	ev, ok := n.find("room:"+roomID, EventGameOver)
	if !ok {
		t.Fatal("draw round should still resolve")
	}
	data := ev.Data.(RoundOverData)
	if data.Result != ResultDraw || data.Winner != ResultDraw {
		t.Errorf("result = %s winner = %s, want draw/draw", data.Result, data.Winner)
	}
	if data.Points["a"] != 0 || data.Points["b"] != 0 {
		t.Errorf("draw must not award points, got %v", data.Points)
	}
}

func TestLoserOpensNextRound(t *testing.T) {
	n := newFakeNotifier()
	c := newTestCoordinator(n, nil, nil, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	c.SubmitMove(roomID, "a", MoveRock)
	c.SubmitMove(roomID, "b", MoveScissors)

	// After the display delay the loser's countdown starts.
	deadline := time.Now().Add(2 * time.Second)
	for {
		events := n.snapshot()
		overIdx := -1
		for i, se := range events {
			if se.target == "room:"+roomID && se.ev.Type == EventGameOver {
				overIdx = i
			}
		}
		found := false
		for i, se := range events {
			if i > overIdx && overIdx >= 0 && se.target == "room:"+roomID && se.ev.Type == EventTimerStart {
				if se.ev.Data.(TimerStartData).CurrentPlayer != "b" {
					t.Fatalf("next round opened by %s, want loser b", se.ev.Data.(TimerStartData).CurrentPlayer)
				}
				found = true
			}
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("next round countdown never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTurnTimeoutResolvesAgainstIdlePlayer(t *testing.T) {
	n := newFakeNotifier()
	s := testSettings()
	s.RPSTurnTimeout = 25 * time.Millisecond
	c := newTestCoordinator(n, nil, nil, s)
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	c.SubmitMove(roomID, "a", MoveRock)

	se := n.waitFor(t, func(se sentEvent) {
		return se.target == "room:"+roomID && se.ev.Type == EventGameOver
	})
	data := se.ev.Data.(RoundOverData)
	if data.Result != ResultTimeout || data.Winner != "a" {
		t.Errorf("result = %s winner = %s, want timeout/a", data.Result, data.Winner)
	}
	if data.TimeoutPlayer != "b" {
		t.Errorf("timeoutPlayer = %s, want b", data.TimeoutPlayer)
	}
	if data.Points["a"] != 10 {
		t.Errorf("timeout win should score, points = %v", data.Points)
	}
}

func TestBothTimeoutsDrawTheRound(t *testing.T) {
	n := newFakeNotifier()
	s := testSettings()
	s.RPSTurnTimeout = 20 * time.Millisecond
	c := newTestCoordinator(n, nil, nil, s)
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	se := n.waitFor(t, func(se sentEvent) {
		return se.target == "room:"+roomID && se.ev.Type == EventGameOver
	})
	data := se.ev.Data.(RoundOverData)
	if data.Result != ResultDraw {
		t.Errorf("result = %s, want draw when both players idle out", data.Result)
	}
	if data.Points["a"] != 0 || data.Points["b"] != 0 {
		t.Errorf("double timeout must not score, points = %v", data.Points)
	}
	if data.GameMoves["a"] != nil || data.GameMoves["b"] != nil {
		t.Error("both decisions should be recorded as timeouts")
	}
}

func TestMatchFinishSettlesBet(t *testing.T) {
	n := newFakeNotifier()
	gw := &fakeGateway{}
	j := &fakeJournal{}
	c := newTestCoordinator(n, gw, j, testSettings())

	c.Identify("a", "A", "a")
	c.Identify("b", "B", "b")
	c.RequestMatch("a", GameRPS, 50, false)
	c.RequestMatch("b", GameRPS, 50, false)
	ev, ok := n.find("user:a", EventGameFound)
	if !ok {
		t.Fatal("pairing failed")
	}
	roomID := ev.Data.(GameFoundData).RoomID

	room := c.testRoom(roomID)
	c.mu.Lock()
	room.Points["a"] = rpsMaxPoints - rpsPointsPerRound
	c.mu.Unlock()

	c.SubmitMove(roomID, "a", MoveRock)
	c.SubmitMove(roomID, "b", MoveScissors)

	fin, ok := n.find("room:"+roomID, EventGameFinished)
	if !ok {
		t.Fatal("match should finish at the point cap")
	}
	data := fin.Data.(MatchFinishedData)
	if data.Winner != "a" || data.FinalPoints["a"] != rpsMaxPoints {
		t.Errorf("final result wrong: %+v", data)
	}
	if data.SaveError {
		t.Error("saveError must not be set on the primary broadcast")
	}
	if c.testRoom(roomID) != nil {
		t.Error("finished room should be discarded")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		saves := gw.callsOf("save")
		settles := gw.callsOf("settle")
		if len(saves) > 0 && len(settles) > 0 {
			if saves[len(saves)-1].winner != "a" {
				t.Errorf("saved winner = %s, want a", saves[len(saves)-1].winner)
			}
			if settles[0].winner != "a" {
				t.Errorf("settled winner = %s, want a", settles[0].winner)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("gateway save/settle never called")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFreeMatchSkipsSettlement(t *testing.T) {
	n := newFakeNotifier()
	gw := &fakeGateway{}
	c := newTestCoordinator(n, gw, nil, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	room := c.testRoom(roomID)
	c.mu.Lock()
	room.Points["a"] = rpsMaxPoints - rpsPointsPerRound
	c.mu.Unlock()

	c.SubmitMove(roomID, "a", MoveRock)
	c.SubmitMove(roomID, "b", MoveScissors)

	n.waitFor(t, func(se sentEvent) {
		return se.target == "room:"+roomID && se.ev.Type == EventGameFinished
	})
	time.Sleep(50 * time.Millisecond)
	if settles := gw.callsOf("settle"); len(settles) != 0 {
		t.Errorf("free match must not settle a bet, got %v", settles)
	}
}

func TestSaveFailureRebroadcastsFinalResult(t *testing.T) {
	n := newFakeNotifier()
	gw := &fakeGateway{failSave: true}
	c := newTestCoordinator(n, gw, nil, testSettings())
	roomID := startTestRoom(t, c, n, GameRPS, "a", "b")

	room := c.testRoom(roomID)
	c.mu.Lock()
	room.Points["b"] = rpsMaxPoints - rpsPointsPerRound
	c.mu.Unlock()

	c.SubmitMove(roomID, "a", MoveScissors)
	c.SubmitMove(roomID, "b", MoveRock)

	se := n.waitFor(t, func(se sentEvent) {
		return se.target == "room:"+roomID && se.ev.Type == EventGameFinished &&
			se.ev.Data.(MatchFinishedData).SaveError
	})
	if se.ev.Data.(MatchFinishedData).Winner != "b" {
		t.Error("saveError re-broadcast should carry the final winner")
	}
	if n.count("room:"+roomID, EventGameFinished) != 2 {
		t.Errorf("expected primary broadcast plus saveError re-broadcast, got %d",
			n.count("room:"+roomID, EventGameFinished))
	}
}
