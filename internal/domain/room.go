package domain

import "strings"

// RoomID is the meeting code participants type to join (e.g. "ABC123").
type RoomID string

type Room struct {
	ID RoomID
}

// NormalizeRoomID canonicalizes a user-supplied meeting code so that
// "abc123", " ABC123 " and "Abc123" all address the same room.
func NormalizeRoomID(raw string) RoomID {
	return RoomID(strings.ToUpper(strings.TrimSpace(raw)))
}
