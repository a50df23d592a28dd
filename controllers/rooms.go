package controllers

import (
	"log"
	"net/http"

	"github.com/salmanshahriar/whos-fake/services/game"
	"github.com/salmanshahriar/whos-fake/services/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requireSession pulls the caller's session out of the cookie and
// checks it actually refers to the room in the URL.
func requireSession(c *gin.Context) (session.Session, bool) {
	sess, ok := session.Get(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return session.Session{}, false
	}

	if raw := c.Param("room_id"); raw != "" {
		roomID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
			return session.Session{}, false
		}
		if roomID != sess.RoomID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Session does not belong to this room"})
			return session.Session{}, false
		}
	}
	return sess, true
}

// @Summary Creates a room and seats the host
// @Description Creates a new room in the lobby phase, registers the caller as its host and stores the session cookie
// @Tags rooms
// @Produce json
// @Success 200 {object} object{room=object,player=object}
// @Failure 500 {object} object{error=string}
// @Router /rooms [post]
func CreateRoom(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, player, err := svc.HostRoom(c.Request.Context())
		if err != nil {
			log.Printf("Error creating room: %v", err)
			c.JSON(statusForError(err), gin.H{"error": "Error creating room"})
			return
		}

		sess := session.Session{RoomID: room.ID, PlayerID: player.ID, IsHostHint: true}
		if err := session.Save(c, sess); err != nil {
			log.Printf("Error saving session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"room": room, "player": player})
	}
}

type joinRoomRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

// @Summary Joins an existing room by code
// @Description Looks the room up by its 4-character code (case-insensitive) and seats a new player while the room is still in the lobby
// @Tags rooms
// @Accept json
// @Produce json
// @Param request body controllers.joinRoomRequest true "Room code and optional display name"
// @Success 200 {object} object{room=object,player=object}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /rooms/join [post]
func JoinRoom(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Room code is required"})
			return
		}

		room, player, err := svc.JoinRoom(c.Request.Context(), req.Code, req.Name)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		sess := session.Session{RoomID: room.ID, PlayerID: player.ID}
		if err := session.Save(c, sess); err != nil {
			log.Printf("Error saving session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"room": room, "player": player})
	}
}

// @Summary Gives info of a room
// @Description Given a room id, returns its current state. The secret word is included while in-game; hiding it from non-imposters is the client's job.
// @Tags rooms
// @Produce json
// @Param room_id path string true "Id of the room"
// @Success 200 {object} object{room=object}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /rooms/{room_id} [get]
func GetRoomInfo(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := uuid.Parse(c.Param("room_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
			return
		}

		room, err := svc.Room(c.Request.Context(), roomID)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"room": room})
	}
}

// @Summary Lists the players of a room
// @Description Returns the room's roster ordered by join time ascending
// @Tags rooms
// @Produce json
// @Param room_id path string true "Id of the room"
// @Success 200 {object} object{players=object}
// @Failure 400 {object} object{error=string}
// @Router /rooms/{room_id}/players [get]
func ListRoomPlayers(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := uuid.Parse(c.Param("room_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
			return
		}

		players, err := svc.Players(c.Request.Context(), roomID)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"players": players})
	}
}

type updateSettingsRequest struct {
	NumImposters int `json:"num_imposters" binding:"required"`
}

// @Summary Updates the room settings
// @Description Changes the configured imposter count. Host-only, and only while the room is in the lobby.
// @Tags rooms
// @Accept json
// @Produce json
// @Param room_id path string true "Id of the room"
// @Param request body controllers.updateSettingsRequest true "New imposter count"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /rooms/{room_id}/settings [patch]
func UpdateSettings(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		var req updateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "num_imposters is required"})
			return
		}

		if err := svc.UpdateSettings(c.Request.Context(), sess, req.NumImposters); err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
	}
}

// @Summary Starts the game
// @Description Picks the imposters and the secret word, then moves the room into the in-game phase. Host-only; needs strictly more players than imposters.
// @Tags rooms
// @Produce json
// @Param room_id path string true "Id of the room"
// @Success 200 {object} object{room=object}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /rooms/{room_id}/start [post]
func StartGame(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		room, err := svc.StartGame(c.Request.Context(), sess)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"room": room})
	}
}

// @Summary Returns the room to the lobby
// @Description The host's "play again": clears imposter flags and the secret word, keeps the roster
// @Tags rooms
// @Produce json
// @Param room_id path string true "Id of the room"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /rooms/{room_id}/return [post]
func ReturnToLobby(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		if err := svc.ReturnToLobby(c.Request.Context(), sess); err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Returned to lobby"})
	}
}

// @Summary Deletes the room
// @Description Host-only teardown of the whole room, players included
// @Tags rooms
// @Produce json
// @Param room_id path string true "Id of the room"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /rooms/{room_id} [delete]
func CloseRoom(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := requireSession(c)
		if !ok {
			return
		}

		if err := svc.CloseRoom(c.Request.Context(), sess); err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		if err := session.Clear(c); err != nil {
			log.Printf("Error clearing session: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Room closed"})
	}
}

// @Summary Leaves the room
// @Description Clears the caller's session. The player record stays on the server until the room is deleted.
// @Tags rooms
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /leave [post]
func LeaveRoom() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := session.Clear(c); err != nil {
			log.Printf("Error clearing session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error clearing session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Left room"})
	}
}
