package redis

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Tables a change event can refer to.
const (
	TableRooms   = "rooms"
	TablePlayers = "players"
)

// Event kinds. Deletes carry the row as it was before removal.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

/*
 * 'RoomEvent' is the envelope published on a room's Redis channel
 * whenever one of its rows changes. Payload holds the row after the
 * change, JSON-encoded; subscribers replace their local copy with it
 * (rooms) or use it as a cue to re-fetch (players).
 */
type RoomEvent struct {
	RoomID  uuid.UUID       `json:"room_id"`
	Table   string          `json:"table"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}
