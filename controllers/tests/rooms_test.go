package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"
	"github.com/salmanshahriar/whos-fake/routes"
	"github.com/salmanshahriar/whos-fake/services/game"
	"github.com/salmanshahriar/whos-fake/services/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(raw)
	require.NoError(t, err)
	return id
}

type roomJSON struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	NumImposters int     `json:"num_imposters"`
	Phase        string  `json:"phase"`
	CurrentWord  *string `json:"current_word"`
}

type playerJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsHost     bool   `json:"is_host"`
	IsImposter bool   `json:"is_imposter"`
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	mem.SeedWords([]string{"Pizza", "Beach", "Castle"})

	r := gin.New()
	r.Use(sessions.Sessions("whosfake_session", cookie.NewStore([]byte("test-key"))))
	routes.SetupRoutes(r, game.NewService(mem))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mem
}

// newClient returns a client with its own cookie jar, so every client
// acts as a separate browser session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: time.Second * 10}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeRoom(t *testing.T, resp *http.Response) (roomJSON, playerJSON) {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Room   roomJSON   `json:"room"`
		Player playerJSON `json:"player"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Room, out.Player
}

func TestRoomLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	host := newClient(t)
	joiner := newClient(t)

	var room roomJSON
	var hostPlayer playerJSON

	t.Run("Host creates a room", func(t *testing.T) {
		resp := doJSON(t, host, http.MethodPost, srv.URL+"/rooms", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		room, hostPlayer = decodeRoom(t, resp)
		assert.Len(t, room.Code, game_constants.RoomCodeLength)
		assert.Equal(t, game_constants.PhaseLobby, room.Phase)
		assert.True(t, hostPlayer.IsHost)
		assert.Equal(t, "Player 1", hostPlayer.Name)
	})

	t.Run("Second player joins by code", func(t *testing.T) {
		resp := doJSON(t, joiner, http.MethodPost, srv.URL+"/rooms/join",
			map[string]string{"code": room.Code, "name": "Dana"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		joinedRoom, player := decodeRoom(t, resp)
		assert.Equal(t, room.ID, joinedRoom.ID)
		assert.Equal(t, "Dana", player.Name)
		assert.False(t, player.IsHost)
	})

	t.Run("Roster comes back in join order", func(t *testing.T) {
		resp := doJSON(t, host, http.MethodGet, srv.URL+"/rooms/"+room.ID+"/players", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer resp.Body.Close()

		var out struct {
			Players []playerJSON `json:"players"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.Len(t, out.Players, 2)
		assert.Equal(t, "Player 1", out.Players[0].Name)
		assert.Equal(t, "Dana", out.Players[1].Name)
	})

	t.Run("Host updates the settings", func(t *testing.T) {
		resp := doJSON(t, host, http.MethodPatch, srv.URL+"/rooms/"+room.ID+"/settings",
			map[string]int{"num_imposters": 1})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Joiner cannot start the game", func(t *testing.T) {
		resp := doJSON(t, joiner, http.MethodPost, srv.URL+"/rooms/"+room.ID+"/start", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Host starts the game", func(t *testing.T) {
		resp := doJSON(t, host, http.MethodPost, srv.URL+"/rooms/"+room.ID+"/start", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		started, _ := decodeRoom(t, resp)
		assert.Equal(t, game_constants.PhaseInGame, started.Phase)
		require.NotNil(t, started.CurrentWord)
		assert.NotEmpty(t, *started.CurrentWord)
	})

	t.Run("Late joiner is rejected", func(t *testing.T) {
		late := newClient(t)
		resp := doJSON(t, late, http.MethodPost, srv.URL+"/rooms/join",
			map[string]string{"code": room.Code})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Host returns the room to the lobby", func(t *testing.T) {
		resp := doJSON(t, host, http.MethodPost, srv.URL+"/rooms/"+room.ID+"/return", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		info := doJSON(t, host, http.MethodGet, srv.URL+"/rooms/"+room.ID, nil)
		require.Equal(t, http.StatusOK, info.StatusCode)
		current, _ := decodeRoom(t, info)
		assert.Equal(t, game_constants.PhaseLobby, current.Phase)
		assert.Nil(t, current.CurrentWord)
	})

	t.Run("Host closes the room", func(t *testing.T) {
		resp := doJSON(t, host, http.MethodDelete, srv.URL+"/rooms/"+room.ID, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		info := doJSON(t, joiner, http.MethodGet, srv.URL+"/rooms/"+room.ID, nil)
		defer info.Body.Close()
		assert.Equal(t, http.StatusNotFound, info.StatusCode)
	})
}

func TestJoinUnknownCode(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/rooms/join",
		map[string]string{"code": "ZZZZ"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinWithoutCode(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/rooms/join",
		map[string]string{"name": "Dana"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHostOnlyActionsNeedSession(t *testing.T) {
	srv, _ := newTestServer(t)
	host := newClient(t)

	resp := doJSON(t, host, http.MethodPost, srv.URL+"/rooms", nil)
	room, _ := decodeRoom(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A client without any session cookie gets a 401.
	anon := newClient(t)
	start := doJSON(t, anon, http.MethodPost, srv.URL+"/rooms/"+room.ID+"/start", nil)
	defer start.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, start.StatusCode)
}

func TestSessionBoundToRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	hostA := newClient(t)
	hostB := newClient(t)

	respA := doJSON(t, hostA, http.MethodPost, srv.URL+"/rooms", nil)
	roomA, _ := decodeRoom(t, respA)
	require.Equal(t, http.StatusOK, respA.StatusCode)

	respB := doJSON(t, hostB, http.MethodPost, srv.URL+"/rooms", nil)
	_, _ = decodeRoom(t, respB)
	require.Equal(t, http.StatusOK, respB.StatusCode)

	// Host B's session refers to room B, not room A.
	resp := doJSON(t, hostB, http.MethodPost, srv.URL+"/rooms/"+roomA.ID+"/start", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLeaveClearsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	host := newClient(t)

	resp := doJSON(t, host, http.MethodPost, srv.URL+"/rooms", nil)
	room, _ := decodeRoom(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	leave := doJSON(t, host, http.MethodPost, srv.URL+"/leave", nil)
	defer leave.Body.Close()
	require.Equal(t, http.StatusOK, leave.StatusCode)

	// With the session gone, host-only routes turn the client away.
	start := doJSON(t, host, http.MethodPost, srv.URL+"/rooms/"+room.ID+"/start", nil)
	defer start.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, start.StatusCode)
}

func TestCleanupEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	host := newClient(t)

	resp := doJSON(t, host, http.MethodPost, srv.URL+"/rooms", nil)
	room, _ := decodeRoom(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	roomID := mustParse(t, room.ID)
	mem.SetLastActivity(roomID, time.Now().UTC().Add(-11*time.Minute))

	cleanup := doJSON(t, newClient(t), http.MethodGet, srv.URL+"/cleanup", nil)
	defer cleanup.Body.Close()
	require.Equal(t, http.StatusOK, cleanup.StatusCode)

	var out struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(cleanup.Body).Decode(&out))
	assert.True(t, out.Success)

	info := doJSON(t, host, http.MethodGet, srv.URL+"/rooms/"+room.ID, nil)
	defer info.Body.Close()
	assert.Equal(t, http.StatusNotFound, info.StatusCode)
}
