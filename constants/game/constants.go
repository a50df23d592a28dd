package game_constants

import "time"

// Room phases
const (
	PhaseLobby  = "lobby"
	PhaseInGame = "in-game"
)

// Room codes are short enough to read out loud across the table. The
// alphabet drops 0/O, 1/I and L so nobody types the wrong lookalike.
const RoomCodeLength = 4
const RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const DefaultNumImposters = 1

// Rooms with no activity for this long get reaped by /cleanup.
const StaleRoomThreshold = 10 * time.Minute

// Pull-fallback interval used by the room watcher when push
// notifications are delayed or lost.
const RoomPollInterval = 3 * time.Second
