package pkg

import "github.com/google/uuid"

// GeneratePlayerID returns a fresh player identifier. The id survives
// reconnects because the client echoes it back on the next room join.
func GeneratePlayerID() string {
	return uuid.New().String()
}

// GenerateRoomID returns a short shareable room code.
func GenerateRoomID() string {
	return uuid.New().String()[:8]
}
