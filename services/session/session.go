package session

import (
	"github.com/google/uuid"
)

// Session is the client's capability reference to its seat in a room:
// which room, which player, plus a hint about hosting that the server
// re-checks on every host-only action. It grants nothing by itself;
// a dangling session just produces "room not found" downstream.
type Session struct {
	RoomID     uuid.UUID `json:"room_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	IsHostHint bool      `json:"is_host"`
}

// IsZero reports whether no session has been established.
func (s Session) IsZero() bool {
	return s.RoomID == uuid.Nil && s.PlayerID == uuid.Nil
}
