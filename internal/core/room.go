package core

import (
	"sync"
	"time"
)

// RoomCapacity is the maximum number of simultaneous occupants.
const RoomCapacity = 2

// Room holds up to RoomCapacity occupants and an append-only message log.
// All fields below mu are guarded by it; fan-out happens while it is held
// so every occupant observes events in log order.
type Room struct {
	Code      string
	CreatedAt time.Time

	mu         sync.Mutex
	occupants  []*Client
	messages   []Message
	messageIDs map[string]struct{}
	closed     bool
	emptySince time.Time
}

// RoomInfo is a point-in-time view of a room.
type RoomInfo struct {
	Code         string
	UserCount    int
	MessageCount int
	CreatedAt    time.Time
}

func newRoom(code string, now time.Time) *Room {
	return &Room{
		Code:       code,
		CreatedAt:  now,
		messageIDs: make(map[string]struct{}),
		emptySince: now,
	}
}

// Info returns the current occupant and message counts.
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		Code:         r.Code,
		UserCount:    len(r.occupants),
		MessageCount: len(r.messages),
		CreatedAt:    r.CreatedAt,
	}
}

// Messages returns a copy of the message log.
func (r *Room) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Occupants returns the ids of current occupants in join order.
func (r *Room) Occupants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.occupants))
	for _, c := range r.occupants {
		ids = append(ids, c.ID)
	}
	return ids
}

func (r *Room) snapshot() []Message {
	return append([]Message(nil), r.messages...)
}

func (r *Room) has(c *Client) bool {
	for _, o := range r.occupants {
		if o == c {
			return true
		}
	}
	return false
}

func (r *Room) full() bool {
	return len(r.occupants) >= RoomCapacity
}

func (r *Room) add(c *Client) {
	r.occupants = append(r.occupants, c)
}

// remove deletes a client from the occupants. Returns true if removed.
func (r *Room) remove(c *Client, now time.Time) bool {
	for i, o := range r.occupants {
		if o == c {
			r.occupants = append(r.occupants[:i], r.occupants[i+1:]...)
			if len(r.occupants) == 0 {
				r.emptySince = now
			}
			return true
		}
	}
	return false
}

func (r *Room) appendMessage(msg Message) {
	r.messages = append(r.messages, msg)
	r.messageIDs[msg.ID] = struct{}{}
}

func (r *Room) hasMessageID(id string) bool {
	_, ok := r.messageIDs[id]
	return ok
}

// broadcast sends an event to all occupants. Slow consumers are kicked.
func (r *Room) broadcast(ev *Event) {
	for _, c := range r.occupants {
		c.deliver(ev)
	}
}

// detachAll forgets every occupant, used when the room is torn down under them.
func (r *Room) detachAll() {
	for _, c := range r.occupants {
		c.leaveRoom(r.Code)
	}
	r.occupants = nil
}
