package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/playarena/backend/internal/config"
)

// Client talks to the platform API that owns persistent game records,
// wallets and rankings. The coordinator treats it as fire-and-forget:
// broadcasts never wait on these calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Default is the package-level default client
var Default *Client

// NewClient creates a new platform API client
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || cfg.PlatformAPIBaseURL == "" {
		log.Printf("[GATEWAY] Platform API not configured - skipping initialization")
		return nil
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.PlatformAPIBaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.GatewayTimeoutSecs) * time.Second},
	}
}

// SetDefault sets the package-level default client
func SetDefault(c *Client) {
	Default = c
}

// CreateRoomRequest is the persisted-room creation payload.
type CreateRoomRequest struct {
	RoomID       string `json:"roomId"`
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
	BetAmount    int    `json:"betAmount"`
	IsFreeGame   bool   `json:"isFreeGame"`
	IsInvitation bool   `json:"isInvitation,omitempty"`
}

// SaveResultRequest appends the room's move history and (if decided) winner.
// The platform upserts by roomId, so re-sending the full history is safe.
type SaveResultRequest struct {
	RoomID string      `json:"roomId"`
	Winner string      `json:"winner,omitempty"`
	Moves  interface{} `json:"moves"`
}

// SettleBetRequest triggers the wallet payout for a finished paid match.
type SettleBetRequest struct {
	RoomID    string `json:"roomId"`
	WinnerID  string `json:"winnerId"`
	LoserID   string `json:"loserId"`
	BetAmount int    `json:"betAmount"`
	GameType  string `json:"gameType"`
}

// CreateRoom creates the persisted room record for a pairing.
func (c *Client) CreateRoom(ctx context.Context, gameType string, req CreateRoomRequest) error {
	return c.post(ctx, fmt.Sprintf("/api/%s/create-room", gameType), req)
}

// SaveResult appends round results (and final winner) for a room.
func (c *Client) SaveResult(ctx context.Context, gameType string, req SaveResultRequest) error {
	return c.post(ctx, fmt.Sprintf("/api/%s/save-result", gameType), req)
}

// SettleBet triggers the bet payout for a finished non-free match.
func (c *Client) SettleBet(ctx context.Context, req SettleBetRequest) error {
	return c.post(ctx, "/api/games/payout", req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("request to %s failed with status %d: %s", path, resp.StatusCode, string(respBody))
	}

	// Some platform endpoints report failures inside a 200 body.
	var check struct {
		Error string `json:"error"`
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &check); err == nil && check.Error != "" {
			return fmt.Errorf("request to %s rejected: %s", path, check.Error)
		}
	}

	return nil
}
