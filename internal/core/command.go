package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom allocates a new empty room.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom adds the client to a room's occupants.
	CommandJoinRoom
	// CommandSendMessage appends a message to a room and fans it out.
	CommandSendMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Room    string
	Content string
}
