package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Cookie-session keys. Stable names so a redeploy doesn't strand every
// player mid-game.
const (
	KeyRoomID   = "whosfake_room_id"
	KeyPlayerID = "whosfake_player_id"
	KeyIsHost   = "whosfake_is_host"
)

// Save persists the session in the client's cookie session. No expiry:
// staleness is handled by the referenced room disappearing.
func Save(c *gin.Context, s Session) error {
	store := sessions.Default(c)
	store.Set(KeyRoomID, s.RoomID.String())
	store.Set(KeyPlayerID, s.PlayerID.String())
	store.Set(KeyIsHost, s.IsHostHint)
	return store.Save()
}

// Get reads the session back out of the cookie. The second return is
// false when the client never joined or already left.
func Get(c *gin.Context) (Session, bool) {
	store := sessions.Default(c)

	roomRaw, ok := store.Get(KeyRoomID).(string)
	if !ok {
		return Session{}, false
	}
	playerRaw, ok := store.Get(KeyPlayerID).(string)
	if !ok {
		return Session{}, false
	}

	roomID, err := uuid.Parse(roomRaw)
	if err != nil {
		return Session{}, false
	}
	playerID, err := uuid.Parse(playerRaw)
	if err != nil {
		return Session{}, false
	}

	isHost, _ := store.Get(KeyIsHost).(bool)
	return Session{RoomID: roomID, PlayerID: playerID, IsHostHint: isHost}, true
}

// Clear drops the session. Leaving never deletes the player record on
// the server; the row stays until the room itself goes away.
func Clear(c *gin.Context) error {
	store := sessions.Default(c)
	store.Delete(KeyRoomID)
	store.Delete(KeyPlayerID)
	store.Delete(KeyIsHost)
	return store.Save()
}
