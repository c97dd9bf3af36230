package service

import (
	"context"

	"bricklabels.dev/internal/protocol"
)

// Host is the game server as seen by the label service. The real
// implementation is the websocket bridge; tests use a fake.
type Host interface {
	// Player resolves a chat speaker name to an identity.
	Player(ctx context.Context, name string) (protocol.PlayerInfo, error)
	// SaveData queries brick save data. nil center/extent means the
	// whole world.
	SaveData(ctx context.Context, center, extent *[3]int) (*protocol.SaveData, error)
	// Whisper sends a direct chat message to one player.
	Whisper(playerID, text string)
	// MiddlePrint shows text in the middle of one player's screen.
	MiddlePrint(playerID, text string)
}
