package core

import "time"

// Message is the domain model for a chat message.
// Messages are immutable once appended to a room log.
type Message struct {
	ID        string
	Room      string
	Sender    string
	Content   string
	Timestamp time.Time
}
