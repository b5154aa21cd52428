package game

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playarena/backend/internal/config"
	"github.com/playarena/backend/internal/gateway"
)

// Gateway is the platform persistence/payout API consumed by the coordinator.
// *gateway.Client satisfies it; tests substitute a fake.
type Gateway interface {
	CreateRoom(ctx context.Context, gameType string, req gateway.CreateRoomRequest) error
	SaveResult(ctx context.Context, gameType string, req gateway.SaveResultRequest) error
	SettleBet(ctx context.Context, req gateway.SettleBetRequest) error
}

// Journal is the local operational mirror of rooms and results.
// *store.Store satisfies it. Optional: a nil Journal disables journaling.
type Journal interface {
	RecordRoomCreated(roomID, gameType, player1, player2 string, betAmount int, isFreeGame, fromInvite bool) error
	RecordRoundResult(roomID string, round int, winner string, detail interface{}) error
	RecordMatchFinished(roomID, winnerID string) error
	RecordRoomAbandoned(roomID string) error
}

// Settings carries the timing knobs of the session protocol.
type Settings struct {
	RPSTurnTimeout time.Duration // RPS move window
	TTTTurnTimeout time.Duration // TicTacToe move window
	RPSRoundDelay  time.Duration // result-display delay before the next RPS round
	TTTRoundDelay  time.Duration // result-display delay before the board reset
	InviteTTL      time.Duration // pending invitation lifetime
	SnapshotTTL    time.Duration // redis room snapshot expiry
	GatewayTimeout time.Duration // per-call platform API budget
}

// SettingsFromConfig builds Settings from the env-driven config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		RPSTurnTimeout: time.Duration(cfg.RPSTurnSeconds) * time.Second,
		TTTTurnTimeout: time.Duration(cfg.TTTTurnSeconds) * time.Second,
		RPSRoundDelay:  time.Duration(cfg.RPSRoundDelaySeconds) * time.Second,
		TTTRoundDelay:  time.Duration(cfg.TTTRoundDelaySeconds) * time.Second,
		InviteTTL:      time.Duration(cfg.InvitationExpirySecs) * time.Second,
		SnapshotTTL:    time.Duration(cfg.RoomSnapshotTTLMinutes) * time.Minute,
		GatewayTimeout: time.Duration(cfg.GatewayTimeoutSecs) * time.Second,
	}
}

// WaitingSlot is the single queued player awaiting an opponent for a game type.
type WaitingSlot struct {
	UserID     string
	BetAmount  int
	IsFreeGame bool
	Since      time.Time
}

// Coordinator owns the presence registry, matchmaking slots, pending
// invitations and room sessions. One mutex serializes every handler and
// timer firing, so no two handlers for the same room ever run concurrently;
// the only async boundary is the gateway save path, which never touches
// room state after the fact.
type Coordinator struct {
	mu       sync.Mutex
	settings Settings
	notifier Notifier
	gateway  Gateway       // may be nil (dev without platform API)
	journal  Journal       // may be nil
	rdb      *redis.Client // may be nil; snapshots disabled

	online  map[string]*UserInfo
	waiting map[GameType]*WaitingSlot
	invites map[string][]*Invitation // keyed by recipient
	rooms   map[string]*Room
}

// NewCoordinator creates the process-wide coordinator. notifier must not be
// nil; gateway, journal and rdb are optional collaborators.
func NewCoordinator(settings Settings, notifier Notifier, gw Gateway, journal Journal, rdb *redis.Client) *Coordinator {
	return &Coordinator{
		settings: settings,
		notifier: notifier,
		gateway:  gw,
		journal:  journal,
		rdb:      rdb,
		online:   make(map[string]*UserInfo),
		waiting:  make(map[GameType]*WaitingSlot),
		invites:  make(map[string][]*Invitation),
		rooms:    make(map[string]*Room),
	}
}

// Stats is a point-in-time view for the ops status endpoint.
type Stats struct {
	OnlineUsers int             `json:"online_users"`
	ActiveRooms int             `json:"active_rooms"`
	Waiting     map[string]bool `json:"waiting"`
	RoomsByGame map[string]int  `json:"rooms_by_game"`
}

// GetStats returns queue/room/presence counters.
func (c *Coordinator) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		OnlineUsers: len(c.online),
		ActiveRooms: len(c.rooms),
		Waiting:     make(map[string]bool),
		RoomsByGame: make(map[string]int),
	}
	for gt, slot := range c.waiting {
		s.Waiting[string(gt)] = slot != nil
	}
	for _, r := range c.rooms {
		s.RoomsByGame[string(r.GameType)]++
	}
	return s
}

// RoomMember reports whether userID plays in an active room.
func (c *Coordinator) RoomMember(roomID, userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.rooms[roomID]
	return ok && room.HasPlayer(userID)
}

// destroyRoom discards the in-memory session: cancels the live timer and
// removes the room. The persisted record created at pairing time outlives it.
// Callers must hold c.mu.
func (c *Coordinator) destroyRoom(room *Room) {
	c.cancelRoomTimer(room)
	delete(c.rooms, room.ID)
}
