package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/utils"
)

const (
	maxCodeAttempts      = 16
	maxMessageIDAttempts = 4
)

// Registry owns the mapping from room code to Room.
//
// Lock order is room.mu before r.mu: teardown happens while the room is
// locked, so nothing can join a room between its last leave and its removal.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	newCode func() (string, error)
	newID   func() string
	now     func() time.Time
	log     zerolog.Logger
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithCodeGenerator overrides the room code source.
func WithCodeGenerator(gen func() (string, error)) RegistryOption {
	return func(r *Registry) { r.newCode = gen }
}

// WithIDGenerator overrides the message id source.
func WithIDGenerator(gen func() string) RegistryOption {
	return func(r *Registry) { r.newID = gen }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithRegistryLogger attaches a logger for room lifecycle events.
func WithRegistryLogger(logger *zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.log = logger.With().Str("component", "registry").Logger()
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms:   make(map[string]*Room),
		newCode: NewRoomCode,
		newID:   utils.NewID,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create allocates a fresh code and inserts an empty room under it.
func (r *Registry) Create() (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		code = NormalizeRoomCode(code)
		if _, taken := r.rooms[code]; taken {
			r.log.Debug().Str("room", code).Int("attempt", attempt).Msg("room code collision")
			continue
		}
		room := newRoom(code, r.now())
		r.rooms[code] = room
		r.log.Info().Str("room", code).Int("rooms", len(r.rooms)).Msg("room created")
		return room, nil
	}
	return nil, ErrNoFreeCode
}

// Get looks a room up by code, case-insensitively.
func (r *Registry) Get(code string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[NormalizeRoomCode(code)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Info returns a snapshot of a live room.
func (r *Registry) Info(code string) (RoomInfo, error) {
	room, err := r.Get(code)
	if err != nil {
		return RoomInfo{}, err
	}
	return room.Info(), nil
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Remove tears a room down regardless of occupants. Absent codes are a no-op.
func (r *Registry) Remove(code string) {
	room, err := r.Get(code)
	if err != nil {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return
	}
	room.detachAll()
	r.unlink(room)
	r.log.Info().Str("room", room.Code).Msg("room removed")
}

// Join adds c to the room's occupants. The joiner receives EventJoinedRoom
// with the log as it stood at join time, then every occupant receives
// EventUserJoined with the new count.
func (r *Registry) Join(code string, c *Client) (*Room, []Message, error) {
	room, err := r.Get(code)
	if err != nil {
		return nil, nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	switch {
	case room.closed:
		return nil, nil, ErrRoomNotFound
	case room.has(c):
		return nil, nil, ErrAlreadyJoined
	case room.full():
		return nil, nil, ErrRoomFull
	}

	room.add(c)
	c.enterRoom(room.Code)
	history := room.snapshot()

	c.deliver(&Event{Kind: EventJoinedRoom, Room: room.Code, Messages: history})
	room.broadcast(&Event{Kind: EventUserJoined, Room: room.Code, Count: len(room.occupants)})

	r.log.Debug().Str("room", room.Code).Str("client_id", c.ID).Int("users", len(room.occupants)).Msg("client joined room")
	return room, history, nil
}

// Leave removes c from the room and returns the remaining occupant count.
// The last leave deletes the room; otherwise the rest receive EventUserLeft.
// Unknown rooms and non-occupants are a no-op, so repeated calls are safe.
func (r *Registry) Leave(code string, c *Client) int {
	room, err := r.Get(code)
	if err != nil {
		c.leaveRoom(NormalizeRoomCode(code))
		return 0
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	c.leaveRoom(room.Code)
	if room.closed || !room.remove(c, r.now()) {
		return len(room.occupants)
	}

	remaining := len(room.occupants)
	if remaining == 0 {
		r.unlink(room)
		r.log.Info().Str("room", room.Code).Msg("room closed")
		return 0
	}

	room.broadcast(&Event{Kind: EventUserLeft, Room: room.Code, Count: remaining})
	r.log.Debug().Str("room", room.Code).Str("client_id", c.ID).Int("users", remaining).Msg("client left room")
	return remaining
}

// Post appends a message from c to the room log and fans it out to every
// occupant, sender included.
func (r *Registry) Post(code string, c *Client, content string) (Message, error) {
	room, err := r.Get(code)
	if err != nil {
		return Message{}, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return Message{}, ErrRoomNotFound
	}
	if !room.has(c) {
		return Message{}, ErrNotInRoom
	}

	id := r.newID()
	for attempt := 1; room.hasMessageID(id) && attempt < maxMessageIDAttempts; attempt++ {
		id = r.newID()
	}
	if room.hasMessageID(id) {
		return Message{}, fmt.Errorf("allocate message id in room %s", room.Code)
	}

	msg := Message{
		ID:        id,
		Room:      room.Code,
		Sender:    c.ID,
		Content:   content,
		Timestamp: r.now(),
	}
	room.appendMessage(msg)
	room.broadcast(&Event{Kind: EventNewMessage, Room: room.Code, Message: msg})
	return msg, nil
}

// SweepEmpty deletes rooms that have had no occupants for longer than ttl
// and returns their codes. Rooms that were created but never joined are the
// usual candidates.
func (r *Registry) SweepEmpty(ttl time.Duration) []string {
	cutoff := r.now().Add(-ttl)

	r.mu.RLock()
	candidates := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		candidates = append(candidates, room)
	}
	r.mu.RUnlock()

	var expired []string
	for _, room := range candidates {
		room.mu.Lock()
		if !room.closed && len(room.occupants) == 0 && room.emptySince.Before(cutoff) {
			r.unlink(room)
			expired = append(expired, room.Code)
		}
		room.mu.Unlock()
	}
	if len(expired) > 0 {
		r.log.Info().Strs("rooms", expired).Msg("expired empty rooms")
	}
	return expired
}

// unlink marks the room closed and drops it from the map. Caller holds room.mu.
func (r *Registry) unlink(room *Room) {
	room.closed = true
	r.mu.Lock()
	if r.rooms[room.Code] == room {
		delete(r.rooms, room.Code)
	}
	r.mu.Unlock()
}
