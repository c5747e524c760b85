package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomCreated answers a create request with the new room code.
	EventRoomCreated EventKind = iota
	// EventJoinedRoom confirms a join to the joiner and carries the message log.
	EventJoinedRoom
	// EventUserJoined tells every occupant the new occupant count.
	EventUserJoined
	// EventUserLeft tells the remaining occupants the new occupant count.
	EventUserLeft
	// EventNewMessage delivers a chat message appended to a room log.
	EventNewMessage
	// EventError notifies a single client about a domain error.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventRoomCreated:
		return "room-created"
	case EventJoinedRoom:
		return "joined-room"
	case EventUserJoined:
		return "user-joined"
	case EventUserLeft:
		return "user-left"
	case EventNewMessage:
		return "new-message"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Count    int       // occupant count for EventUserJoined/EventUserLeft
	Message  Message   // EventNewMessage
	Messages []Message // EventJoinedRoom
	Error    *CoreError
}
