package ws

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/playarena/backend/internal/game"
)

// Inbound message data types
type UserInfoData struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	NickName string `json:"nickName"`
}

type FindGameData struct {
	GameType   game.GameType `json:"gameType"`
	BetAmount  int           `json:"betAmount"`
	IsFreeGame bool          `json:"isFreeGame"`
}

type CancelGameData struct {
	GameType game.GameType `json:"gameType"`
}

type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

type MakeMoveData struct {
	RoomID string `json:"roomId"`
	Move   string `json:"move"`
}

type PlaceMoveData struct {
	RoomID string `json:"roomId"`
	Index  int    `json:"index"`
}

type ReportTimeoutData struct {
	RoomID string `json:"roomId"`
}

type InviteFriendData struct {
	FriendID   string        `json:"friendId"`
	GameType   game.GameType `json:"gameType"`
	GameName   string        `json:"gameName"`
	Message    string        `json:"message"`
	BetAmount  int           `json:"betAmount"`
	IsFreeGame bool          `json:"isFreeGame"`
}

type InvitationActionData struct {
	InvitationID string `json:"invitationId"`
}

type ChatData struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// GameServer ties the hub to the game coordinator.
type GameServer struct {
	hub       *Hub
	coord     *game.Coordinator
	jwtSecret string
}

// NewGameServer creates the websocket front for the coordinator.
func NewGameServer(hub *Hub, coord *game.Coordinator, jwtSecret string) *GameServer {
	return &GameServer{hub: hub, coord: coord, jwtSecret: jwtSecret}
}

// HandleWebSocket upgrades the connection. A token query parameter is
// optional; when present its subject pins the identity the connection may
// claim in its userInfo message.
func (s *GameServer) HandleWebSocket(c *gin.Context) {
	var expected string
	if token := c.Query("token"); token != "" && s.jwtSecret != "" {
		sub, err := subjectFromToken(token, s.jwtSecret)
		if err != nil {
			log.Printf("[WS] Rejected connection with bad token: %v", err)
			c.JSON(401, gin.H{"error": "invalid token"})
			return
		}
		expected = sub
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:           conn,
		server:         s,
		expectedUserID: expected,
		send:           make(chan []byte, 256),
	}

	go client.writePump()
	go client.readPump()
}

// readPump reads and dispatches messages until the connection drops, then
// reports the disconnect to the coordinator if this connection was still
// the user's current one.
func (c *Client) readPump() {
	defer func() {
		if c.server.hub.Unbind(c) {
			c.server.coord.Disconnect(c.userID)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close for user %s: %v", c.userID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one inbound intent. Every intent except userInfo
// requires the connection to be identified first.
func (c *Client) handleMessage(msg WSMessage) {
	coord := c.server.coord

	if msg.Type == "userInfo" {
		var data UserInfoData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.UserID == "" {
			c.sendError("Invalid user info")
			return
		}
		if c.expectedUserID != "" && c.expectedUserID != data.UserID {
			c.sendError("Identity does not match token")
			return
		}
		c.server.hub.Bind(c, data.UserID)
		coord.Identify(data.UserID, data.UserName, data.NickName)
		return
	}

	if c.userID == "" {
		c.sendError("Identify first")
		return
	}

	switch msg.Type {
	case "findGame":
		var data FindGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid find game data")
			return
		}
		coord.RequestMatch(c.userID, data.GameType, data.BetAmount, data.IsFreeGame)

	case "cancelGame":
		var data CancelGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid cancel data")
			return
		}
		coord.CancelMatch(c.userID, data.GameType)

	case "joinRoom":
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid room data")
			return
		}
		if coord.RoomMember(data.RoomID, c.userID) {
			c.server.hub.JoinRoom(data.RoomID, c.userID)
		}

	case "makeMove":
		var data MakeMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid move data")
			return
		}
		if err := coord.SubmitMove(data.RoomID, c.userID, data.Move); errors.Is(err, game.ErrInvalidMove) {
			c.sendError("Invalid move")
		}

	case "placeMove":
		var data PlaceMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid placement data")
			return
		}
		coord.PlaceMove(data.RoomID, c.userID, data.Index)

	case "reportTimeout":
		var data ReportTimeoutData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid timeout data")
			return
		}
		coord.ReportTimeout(data.RoomID, c.userID)

	case "inviteFriend":
		var data InviteFriendData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.FriendID == "" {
			c.sendError("Invalid invitation data")
			return
		}
		coord.Invite(c.userID, data.FriendID, data.GameType, data.GameName, data.Message, data.BetAmount, data.IsFreeGame)

	case "acceptInvitation":
		var data InvitationActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid invitation data")
			return
		}
		coord.AcceptInvitation(c.userID, data.InvitationID)

	case "rejectInvitation":
		var data InvitationActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid invitation data")
			return
		}
		coord.RejectInvitation(c.userID, data.InvitationID)

	case "gameMessage":
		var data ChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid chat data")
			return
		}
		coord.SendChat(data.RoomID, c.userID, data.Message)

	default:
		c.sendError("Unknown message type")
	}
}
