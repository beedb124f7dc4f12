package uid

import (
	"strings"

	"lukechampine.com/frand"
)

const (
	RoomCodeLength = 6
	// no 0/O or 1/I, they are easy to mistype when the code is read aloud
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateRoomCode returns a short join code for a room.
func GenerateRoomCode() string {
	var sb strings.Builder
	sb.Grow(RoomCodeLength)
	for i := 0; i < RoomCodeLength; i++ {
		sb.WriteByte(roomCodeAlphabet[frand.Intn(len(roomCodeAlphabet))])
	}
	return sb.String()
}

// NormalizeRoomCode upper-cases and trims user input.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidRoomCode reports whether code could have come from GenerateRoomCode.
func ValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(roomCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
