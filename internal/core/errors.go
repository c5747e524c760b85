package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomNotFound  = "room_not_found"
	ErrCodeRoomFull      = "room_full"
	ErrCodeAlreadyJoined = "already_joined"
	ErrCodeNotInRoom     = "not_in_room"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeInternal      = "internal"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyJoined = errors.New("already joined")
	ErrNotInRoom     = errors.New("not in room")

	// ErrNoFreeCode is returned when no unused room code could be drawn.
	ErrNoFreeCode = errors.New("no free room code")
	// ErrHubClosed is returned when registering with a hub that stopped running.
	ErrHubClosed = errors.New("hub closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// toCoreError maps a domain error to the shape sent to clients.
func toCoreError(err error) *CoreError {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return coreError(ErrCodeRoomNotFound, "Room not found")
	case errors.Is(err, ErrRoomFull):
		return coreError(ErrCodeRoomFull, "Room is full")
	case errors.Is(err, ErrAlreadyJoined):
		return coreError(ErrCodeAlreadyJoined, "Already in room")
	case errors.Is(err, ErrNotInRoom):
		return coreError(ErrCodeNotInRoom, "Not in room")
	default:
		return coreError(ErrCodeInternal, "internal error")
	}
}

// IsClientError reports whether err was caused by client input rather than a fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrRoomFull) ||
		errors.Is(err, ErrAlreadyJoined) ||
		errors.Is(err, ErrNotInRoom)
}
