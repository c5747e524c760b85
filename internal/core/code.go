package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// roomCodeBytes is the entropy of a room code; hex encoding doubles it to 6 chars.
const roomCodeBytes = 3

// NewRoomCode draws a fresh uppercase hex room code.
func NewRoomCode() (string, error) {
	buf := make([]byte, roomCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// NormalizeRoomCode makes user-supplied codes comparable with stored ones.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
