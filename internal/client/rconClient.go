package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"cosmo-agent/internal/config"
	"cosmo-agent/internal/model"

	"github.com/gorilla/websocket"
)

const rconSenderName = "WebRcon"

// rconMessage is a Rust WebRCON frame. Requests carry Name, responses carry Type.
type rconMessage struct {
	Identifier int    `json:"Identifier"`
	Message    string `json:"Message"`
	Name       string `json:"Name,omitempty"`
	Type       string `json:"Type,omitempty"`
}

type rconPlayer struct {
	SteamID     string `json:"SteamID"`
	DisplayName string `json:"DisplayName"`
}

// RconClient runs console commands on a Rust server over WebRCON and looks up
// connected players. It keeps one connection and redials after any I/O error.
type RconClient struct {
	mu      sync.Mutex
	dialer  *websocket.Dialer
	url     string
	timeout time.Duration
	conn    *websocket.Conn
	nextID  int
}

func NewRconClient(rconCfg *config.Rcon) *RconClient {
	return &RconClient{
		dialer: &websocket.Dialer{
			HandshakeTimeout: rconCfg.Timeout,
		},
		url:     fmt.Sprintf("ws://%s/%s", rconCfg.Address, url.PathEscape(rconCfg.Password)),
		timeout: rconCfg.Timeout,
		nextID:  1000,
	}
}

// RunServerCommand runs a command and waits until the server answers it. A
// write on a socket the server already dropped still succeeds, so only the
// answer proves the command arrived.
func (c *RconClient) RunServerCommand(ctx context.Context, command string) error {
	_, err := c.Execute(ctx, command)
	return err
}

// Execute sends a command and returns the console output answering it.
func (c *RconClient) Execute(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.send(ctx, command)
	if err != nil {
		return "", err
	}
	return c.await(ctx, id)
}

// FindPlayerByID returns the connected player with the given steam id, or nil
// when that player is not online.
func (c *RconClient) FindPlayerByID(ctx context.Context, id string) (*model.Player, error) {
	out, err := c.Execute(ctx, "playerlist")
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	var players []rconPlayer
	if err := json.Unmarshal([]byte(out), &players); err != nil {
		return nil, fmt.Errorf("decode player list: %w", err)
	}

	for _, p := range players {
		if p.SteamID == id {
			return &model.Player{
				ID:        p.SteamID,
				Name:      p.DisplayName,
				Connected: true,
			}, nil
		}
	}
	return nil, nil
}

func (c *RconClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// send must be called with mu held.
func (c *RconClient) send(ctx context.Context, command string) (int, error) {
	if err := c.connect(ctx); err != nil {
		return 0, err
	}

	c.nextID++
	id := c.nextID

	c.conn.SetWriteDeadline(c.deadline(ctx))
	if err := c.conn.WriteJSON(rconMessage{Identifier: id, Message: command, Name: rconSenderName}); err != nil {
		c.reset()
		return 0, fmt.Errorf("write rcon command: %w", err)
	}
	return id, nil
}

// await reads frames until the answer to id arrives. Must be called with mu held.
func (c *RconClient) await(ctx context.Context, id int) (string, error) {
	c.conn.SetReadDeadline(c.deadline(ctx))
	for {
		var msg rconMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.reset()
			return "", fmt.Errorf("read rcon response: %w", err)
		}
		// chat and log broadcasts share the socket
		if msg.Identifier == id {
			return msg.Message, nil
		}
	}
}

func (c *RconClient) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial rcon: %w", err)
	}
	c.conn = conn
	return nil
}

func (c *RconClient) reset() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *RconClient) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}
