package game

// Event is the outbound message envelope. The ws layer marshals it as
// {"type": ..., "data": {...}} and pushes it onto client send buffers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Outbound event types
const (
	EventOnlineUsers          = "onlineUsers"
	EventGameInvitation       = "gameInvitation"
	EventInvitationSent       = "invitationSent"
	EventInvitationRejected   = "invitationRejected"
	EventInvitationExpired    = "invitationExpired"
	EventInvitationError      = "invitationError"
	EventWaiting              = "waiting"
	EventBetMismatch          = "betMismatch"
	EventGameFound            = "gameFound"
	EventGameError            = "gameError"
	EventWaitingForOpponent   = "waitingForOpponent"
	EventTimerStart           = "timerStart"
	EventGameOver             = "gameOver"
	EventMoveMade             = "moveMade"
	EventGameFinished         = "gameFinished"
	EventOpponentDisconnected = "opponentDisconnected"
	EventGameMessage          = "gameMessage"
)

// Invitation error codes
const (
	InviteErrOffline        = "OFFLINE"
	InviteErrInvalidExpired = "INVALID_OR_EXPIRED"
	InviteErrInviterOffline = "INVITER_OFFLINE"
	InviteErrCreateFailed   = "CREATE_FAILED"
)

// UserInfo is the public identity broadcast in presence and pairing events.
type UserInfo struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	NickName string `json:"nickName"`
}

// GameInvitationData is delivered to the invitation recipient.
type GameInvitationData struct {
	InvitationID string   `json:"invitationId"`
	From         UserInfo `json:"from"`
	GameType     GameType `json:"gameType"`
	GameName     string   `json:"gameName,omitempty"`
	Message      string   `json:"message,omitempty"`
	BetAmount    int      `json:"betAmount"`
	IsFreeGame   bool     `json:"isFreeGame"`
}

type InvitationSentData struct {
	To           string `json:"to"`
	InvitationID string `json:"invitationId"`
}

type InvitationRejectedData struct {
	InvitationID string    `json:"invitationId"`
	By           *UserInfo `json:"by,omitempty"`
	Status       string    `json:"status,omitempty"`
}

type InvitationExpiredData struct {
	InvitationID string `json:"invitationId"`
}

type InvitationErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WaitingData struct {
	GameType GameType `json:"gameType"`
}

type BetMismatchData struct {
	Message string `json:"message"`
}

// GameFoundData tells each player their room, opponent and who opens.
type GameFoundData struct {
	RoomID        string   `json:"roomId"`
	GameType      GameType `json:"gameType"`
	Opponent      UserInfo `json:"opponent"`
	PlayerTurn    UserInfo `json:"playerTurn"`
	IsInvitedGame bool     `json:"isInvitedGame,omitempty"`
}

type GameErrorData struct {
	Message string `json:"message"`
}

type WaitingForOpponentData struct {
	RoomID        string `json:"roomId"`
	CurrentPlayer string `json:"currentPlayer"`
}

type TimerStartData struct {
	RoomID        string `json:"roomId"`
	CurrentPlayer string `json:"currentPlayer"`
	TimeLeft      int    `json:"timeLeft"`
}

// RoundOverData announces one resolved round. RPS rounds carry the move map
// and cumulative points; TicTacToe rounds carry the draw flag and round scores.
type RoundOverData struct {
	RoomID        string             `json:"roomId"`
	GameType      GameType           `json:"gameType"`
	Result        string             `json:"result,omitempty"`
	Winner        string             `json:"winner,omitempty"`
	IsDraw        bool               `json:"isDraw,omitempty"`
	GameMoves     map[string]*string `json:"gameMoves,omitempty"`
	Points        map[string]int     `json:"points,omitempty"`
	Scores        map[string]int     `json:"scores,omitempty"`
	GameFinished  bool               `json:"gameFinished"`
	TimeoutPlayer string             `json:"timeoutPlayer,omitempty"`
}

// MoveMadeData carries the TicTacToe board after a placement or a forced
// turn pass.
type MoveMadeData struct {
	RoomID        string   `json:"roomId"`
	Board         []string `json:"board"`
	CurrentPlayer string   `json:"currentPlayer"`
	Winner        string   `json:"winner,omitempty"`
	IsDraw        bool     `json:"isDraw"`
}

// MatchFinishedData announces the final outcome. SaveError is set on a
// re-broadcast when the persistence call for the finished match failed.
type MatchFinishedData struct {
	RoomID      string         `json:"roomId"`
	GameType    GameType       `json:"gameType"`
	Winner      string         `json:"winner"`
	FinalPoints map[string]int `json:"finalPoints,omitempty"`
	FinalScores map[string]int `json:"finalScores,omitempty"`
	TotalMoves  []RoundRecord  `json:"totalMoves,omitempty"`
	SaveError   bool           `json:"saveError,omitempty"`
}

type OpponentDisconnectedData struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type GameMessageData struct {
	RoomID    string `json:"roomId"`
	Message   string `json:"message"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
}

// Notifier delivers events to connected clients. The ws hub implements it;
// tests use an in-memory fake.
type Notifier interface {
	ToUser(userID string, ev Event)
	ToRoom(roomID string, ev Event)
	ToAll(ev Event)
	JoinRoom(roomID string, userIDs ...string)
	CloseRoom(roomID string)
}
