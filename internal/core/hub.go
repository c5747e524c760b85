package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hub routes client commands to the registry and owns per-client goroutines.
// Each registered client gets one goroutine that runs its commands in order
// and performs disconnect processing exactly once when it ends.
type Hub struct {
	registry     *Registry
	log          zerolog.Logger
	emptyRoomTTL time.Duration

	register chan *Client
	done     chan struct{}
	clients  sync.WaitGroup
}

// HubOption customizes a Hub.
type HubOption func(*Hub)

// WithLogger attaches a logger to the hub.
func WithLogger(logger *zerolog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger.With().Str("component", "hub").Logger()
		}
	}
}

// WithEmptyRoomTTL enables expiry of rooms left without occupants for ttl.
func WithEmptyRoomTTL(ttl time.Duration) HubOption {
	return func(h *Hub) { h.emptyRoomTTL = ttl }
}

// NewHub creates a hub over registry. A nil registry gets a fresh one.
func NewHub(registry *Registry, opts ...HubOption) *Hub {
	if registry == nil {
		registry = NewRegistry()
	}
	h := &Hub{
		registry: registry,
		log:      zerolog.Nop(),
		register: make(chan *Client),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry exposes the room registry the hub routes into.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run accepts client registrations until ctx is cancelled, then waits for
// every client goroutine to finish its disconnect processing.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	var sweep <-chan time.Time
	if h.emptyRoomTTL > 0 {
		interval := h.emptyRoomTTL / 2
		if interval < time.Second {
			interval = time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	h.log.Info().Msg("hub running")
	for {
		select {
		case <-ctx.Done():
			h.clients.Wait()
			h.log.Info().Int("rooms", h.registry.Len()).Msg("hub stopped")
			return
		case c := <-h.register:
			h.clients.Add(1)
			go h.serve(ctx, c)
		case <-sweep:
			h.registry.SweepEmpty(h.emptyRoomTTL)
		}
	}
}

// RegisterClient hands a freshly connected client to the hub.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// UnregisterClient signals that the client's transport went away.
// Safe to call any number of times.
func (h *Hub) UnregisterClient(c *Client) {
	c.stop()
}

func (h *Hub) serve(ctx context.Context, c *Client) {
	defer h.clients.Done()
	defer h.disconnect(c)

	h.log.Debug().Str("client_id", c.ID).Msg("client registered")
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.quit:
			return
		case cmd := <-c.Commands:
			if cmd != nil {
				h.handle(c, cmd)
			}
		}
	}
}

func (h *Hub) handle(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandCreateRoom:
		room, err := h.registry.Create()
		if err != nil {
			h.log.Error().Err(err).Str("client_id", c.ID).Msg("create room")
			c.deliver(&Event{Kind: EventError, Error: coreError(ErrCodeInternal, "Could not create room")})
			return
		}
		c.deliver(&Event{Kind: EventRoomCreated, Room: room.Code})
	case CommandJoinRoom:
		if _, _, err := h.registry.Join(cmd.Room, c); err != nil {
			h.reject(c, cmd, err)
		}
	case CommandSendMessage:
		_, err := h.registry.Post(cmd.Room, c, cmd.Content)
		switch {
		case errors.Is(err, ErrRoomNotFound):
			// The room may have been torn down while the sender was leaving.
			h.log.Debug().Str("client_id", c.ID).Str("room", cmd.Room).Msg("message to missing room dropped")
		case err != nil:
			h.reject(c, cmd, err)
		}
	default:
		c.deliver(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "Unknown command")})
	}
}

func (h *Hub) reject(c *Client, cmd *Command, err error) {
	if IsClientError(err) {
		h.log.Debug().Err(err).Str("client_id", c.ID).Str("room", cmd.Room).Msg("command rejected")
	} else {
		h.log.Error().Err(err).Str("client_id", c.ID).Str("room", cmd.Room).Msg("command failed")
	}
	c.deliver(&Event{Kind: EventError, Room: NormalizeRoomCode(cmd.Room), Error: toCoreError(err)})
}

func (h *Hub) disconnect(c *Client) {
	rooms, first := c.markDisconnected()
	if !first {
		return
	}
	for _, code := range rooms {
		remaining := h.registry.Leave(code, c)
		h.log.Debug().Str("client_id", c.ID).Str("room", code).Int("users", remaining).Msg("left room on disconnect")
	}
	c.closeEvents()
	h.log.Debug().Str("client_id", c.ID).Msg("client disconnected")
}
