package battleship

import (
	"github.com/google/uuid"
)

// Player is one seat of an online match. The host seat moves first.
type Player struct {
	Uuid      string
	IsHost    bool
	IsReady   bool
	SessionID string
}

func NewPlayer(isHost bool, sessionID string) *Player {
	return &Player{
		Uuid:      uuid.NewString()[:10],
		IsHost:    isHost,
		SessionID: sessionID,
	}
}
