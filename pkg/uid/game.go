package uid

import "github.com/google/uuid"

// GenerateGameID returns a random identifier for a new game.
func GenerateGameID() string {
	return uuid.NewString()
}

// GenerateConnectionID identifies an anonymous realtime connection.
func GenerateConnectionID() string {
	return "conn_" + uuid.NewString()
}

// GeneratePlayerID identifies a guest player in issued tokens.
func GeneratePlayerID() string {
	return "guest_" + uuid.NewString()
}
