package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/coder/websocket"
)

// Role identifies what kind of participant a connection is.
type Role string

const (
	RoleHost    = Role("host")
	RoleTeam    = Role("team")
	RoleDisplay = Role("display")
)

// Client represents a single WebSocket connection attached to a room.
// Conn may be nil in tests; messages still flow through Send.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		Conn: conn,
		Send: make(chan []byte, 16),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket
// connection. Returns when the channel closes or a write fails.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub holds the live connections of one room, split by role. Delivery is
// best-effort: a recipient with a full or closed channel is skipped and
// never blocks the others.
type Hub struct {
	mu       sync.RWMutex
	hosts    map[*Client]bool
	displays map[*Client]bool
	teams    map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		hosts:    make(map[*Client]bool),
		displays: make(map[*Client]bool),
		teams:    make(map[string]*Client),
	}
}

func (h *Hub) AddHost(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hosts[c] = true
}

func (h *Hub) AddDisplay(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.displays[c] = true
}

func (h *Hub) AddTeam(teamID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.teams[teamID] = c
}

// TeamID resolves a connection back to its team id.
func (h *Hub) TeamID(c *Client) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, tc := range h.teams {
		if tc == c {
			return id, true
		}
	}
	return "", false
}

// Remove detaches a connection from whichever set it belongs to, closes its
// Send channel, and reports what it was. The empty role means the
// connection was not attached.
func (h *Hub) Remove(c *Client) (Role, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.hosts[c] {
		delete(h.hosts, c)
		close(c.Send)
		return RoleHost, ""
	}
	if h.displays[c] {
		delete(h.displays, c)
		close(c.Send)
		return RoleDisplay, ""
	}
	for id, tc := range h.teams {
		if tc == c {
			delete(h.teams, id)
			close(c.Send)
			return RoleTeam, id
		}
	}
	return "", ""
}

func (h *Hub) Counts() (hosts, teams, displays int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hosts), len(h.teams), len(h.displays)
}

// Broadcast sends a message to every host, team, and display connection.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Hub] Marshal error: %v\n", err)
		return
	}
	for _, c := range h.snapshot(true, true, true) {
		send(c, data)
	}
}

// PushHosts sends a message to host connections only.
func (h *Hub) PushHosts(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Hub] Marshal error: %v\n", err)
		return
	}
	for _, c := range h.snapshot(true, false, false) {
		send(c, data)
	}
}

// Send unicasts a message to one connection.
func (h *Hub) Send(c *Client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Hub] Marshal error: %v\n", err)
		return
	}
	send(c, data)
}

// snapshot copies the requested connection sets so that a concurrent
// disconnect cannot corrupt fan-out iteration.
func (h *Hub) snapshot(hosts, teams, displays bool) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.hosts)+len(h.teams)+len(h.displays))
	if hosts {
		for c := range h.hosts {
			out = append(out, c)
		}
	}
	if teams {
		for _, c := range h.teams {
			out = append(out, c)
		}
	}
	if displays {
		for c := range h.displays {
			out = append(out, c)
		}
	}
	return out
}

func send(c *Client, data []byte) {
	defer func() {
		// Send may race with channel close on disconnect; dropping the
		// message is the correct outcome for a dead recipient.
		_ = recover()
	}()
	select {
	case c.Send <- data:
	default:
		// Drop message if channel full
	}
}
