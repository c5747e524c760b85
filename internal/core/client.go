package core

import "sync"

// DefaultEventBuffer is the per-client outbound queue length.
const DefaultEventBuffer = 64

// ClientState tracks where a client is in its connection lifecycle.
type ClientState int

const (
	// StateConnected means the client is live but occupies no room.
	StateConnected ClientState = iota
	// StateInRoom means the client occupies at least one room.
	StateInRoom
	// StateDisconnected is terminal.
	StateDisconnected
)

func (s ClientState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateInRoom:
		return "in_room"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Client is a chat participant as seen by the core layer.
// The transport owns it; rooms only hold references for fan-out.
type Client struct {
	ID       string
	Name     string
	Commands chan *Command
	Events   chan *Event

	mu    sync.Mutex
	state ClientState
	rooms []string

	quit      chan struct{}
	quitOnce  sync.Once
	kicked    chan struct{}
	kickOnce  sync.Once
	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
// A non-positive buffer falls back to DefaultEventBuffer.
func NewClient(id, name string, buffer int) *Client {
	if name == "" {
		name = id
	}
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Client{
		ID:       id,
		Name:     name,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
		quit:     make(chan struct{}),
		kicked:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Client) State() ClientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Rooms returns the codes of rooms the client occupies, in join order.
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.rooms...)
}

// CurrentRoom returns the most recently joined room, or "".
func (c *Client) CurrentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.rooms) == 0 {
		return ""
	}
	return c.rooms[len(c.rooms)-1]
}

// Kicked is closed when the client fell too far behind on events.
// The transport should drop the connection when it fires.
func (c *Client) Kicked() <-chan struct{} {
	return c.kicked
}

func (c *Client) enterRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisconnected {
		return
	}
	c.rooms = append(c.rooms, code)
	c.state = StateInRoom
}

func (c *Client) leaveRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.rooms {
		if r == code {
			c.rooms = append(c.rooms[:i], c.rooms[i+1:]...)
			break
		}
	}
	if len(c.rooms) == 0 && c.state == StateInRoom {
		c.state = StateConnected
	}
}

// markDisconnected flips the client to its terminal state exactly once and
// returns the rooms it still occupied.
func (c *Client) markDisconnected() ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisconnected {
		return nil, false
	}
	c.state = StateDisconnected
	return append([]string(nil), c.rooms...), true
}

// deliver queues an event without blocking. A full queue kicks the client
// rather than leaving a gap in what it observed.
func (c *Client) deliver(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		c.kick()
		return false
	}
}

func (c *Client) kick() {
	c.kickOnce.Do(func() { close(c.kicked) })
}

func (c *Client) stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

func (c *Client) closeEvents() {
	c.closeOnce.Do(func() { close(c.Events) })
}
