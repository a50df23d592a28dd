package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"
	"github.com/salmanshahriar/whos-fake/models/postgres"
	redis_models "github.com/salmanshahriar/whos-fake/models/redis"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * Memory is an in-memory room store with the same observable semantics
 * as the PostgreSQL one, including change notifications. It backs
 * tests and local hacking without a database. Not-found conditions
 * surface as gorm.ErrRecordNotFound, same as the real store.
 */
type Memory struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*postgres.Room
	players  map[uuid.UUID]*postgres.Player
	words    []postgres.Word
	notifier Notifier

	// joinSeq keeps JoinedAt strictly increasing even when inserts
	// land within the same wall-clock tick.
	joinSeq int
}

func NewMemory() *Memory {
	return &Memory{
		rooms:   make(map[uuid.UUID]*postgres.Room),
		players: make(map[uuid.UUID]*postgres.Player),
	}
}

// SetNotifier attaches a push channel, mirroring the real store.
func (m *Memory) SetNotifier(n Notifier) {
	m.notifier = n
}

// SeedWords replaces the word bank.
func (m *Memory) SeedWords(words []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.words = m.words[:0]
	for i, w := range words {
		m.words = append(m.words, postgres.Word{ID: uint(i + 1), Word: w})
	}
}

// SetLastActivity backdates a room. Test hook for the reaper.
func (m *Memory) SetLastActivity(roomID uuid.UUID, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[roomID]; ok {
		room.LastActivity = t
	}
}

func (m *Memory) publish(roomID uuid.UUID, table, event string, row interface{}) {
	if m.notifier == nil {
		return
	}
	var payload json.RawMessage
	if row != nil {
		payload, _ = json.Marshal(row)
	}
	m.notifier.PublishRoomEvent(&redis_models.RoomEvent{
		RoomID:  roomID,
		Table:   table,
		Event:   event,
		Payload: payload,
	})
}

func copyRoom(r *postgres.Room) *postgres.Room {
	c := *r
	return &c
}

func copyPlayer(p *postgres.Player) *postgres.Player {
	c := *p
	return &c
}

func (m *Memory) CreateRoom(ctx context.Context) (*postgres.Room, error) {
	m.mu.Lock()

	code := postgres.GenerateRoomCode()
	for m.codeTaken(code) {
		code = postgres.GenerateRoomCode()
	}

	now := time.Now().UTC()
	room := &postgres.Room{
		ID:           uuid.New(),
		Code:         code,
		NumImposters: 1,
		Phase:        game_constants.PhaseLobby,
		CreatedAt:    now,
		LastActivity: now,
	}
	m.rooms[room.ID] = room
	out := copyRoom(room)
	m.mu.Unlock()

	m.publish(out.ID, redis_models.TableRooms, redis_models.EventInsert, out)
	return out, nil
}

func (m *Memory) codeTaken(code string) bool {
	for _, room := range m.rooms {
		if room.Code == code {
			return true
		}
	}
	return false
}

func (m *Memory) GetRoom(ctx context.Context, id uuid.UUID) (*postgres.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyRoom(room), nil
}

func (m *Memory) GetRoomByCode(ctx context.Context, code string) (*postgres.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		if strings.EqualFold(room.Code, code) {
			return copyRoom(room), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Memory) UpdateRoom(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	m.mu.Lock()
	room, ok := m.rooms[id]
	if !ok {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	applyRoomFields(room, fields)
	room.LastActivity = time.Now().UTC()
	out := copyRoom(room)
	m.mu.Unlock()

	m.publish(id, redis_models.TableRooms, redis_models.EventUpdate, out)
	return nil
}

func applyRoomFields(room *postgres.Room, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "host_player_id":
			switch v := value.(type) {
			case uuid.UUID:
				room.HostPlayerID = &v
			case *uuid.UUID:
				room.HostPlayerID = v
			}
		case "num_imposters":
			if v, ok := value.(int); ok {
				room.NumImposters = v
			}
		case "phase":
			if v, ok := value.(string); ok {
				room.Phase = v
			}
		case "current_word":
			switch v := value.(type) {
			case string:
				room.CurrentWord = &v
			case nil:
				room.CurrentWord = nil
			}
		case "last_activity":
			if v, ok := value.(time.Time); ok {
				room.LastActivity = v
			}
		}
	}
}

func (m *Memory) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	room, ok := m.rooms[id]
	if !ok {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	out := copyRoom(room)
	delete(m.rooms, id)
	for playerID, player := range m.players {
		if player.RoomID == id {
			delete(m.players, playerID)
		}
	}
	m.mu.Unlock()

	m.publish(id, redis_models.TableRooms, redis_models.EventDelete, out)
	return nil
}

func (m *Memory) CreatePlayer(ctx context.Context, player *postgres.Player) error {
	m.mu.Lock()
	room, ok := m.rooms[player.RoomID]
	if !ok {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	if player.ID == uuid.Nil {
		player.ID = uuid.New()
	}
	m.joinSeq++
	player.JoinedAt = time.Now().UTC().Add(time.Duration(m.joinSeq) * time.Millisecond)
	m.players[player.ID] = copyPlayer(player)
	room.LastActivity = time.Now().UTC()
	out := copyPlayer(player)
	m.mu.Unlock()

	m.publish(out.RoomID, redis_models.TablePlayers, redis_models.EventInsert, out)
	return nil
}

func (m *Memory) GetPlayer(ctx context.Context, id uuid.UUID) (*postgres.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	player, ok := m.players[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyPlayer(player), nil
}

func (m *Memory) ListPlayers(ctx context.Context, roomID uuid.UUID) ([]postgres.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var players []postgres.Player
	for _, player := range m.players {
		if player.RoomID == roomID {
			players = append(players, *player)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

func (m *Memory) UpdatePlayer(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	m.mu.Lock()
	player, ok := m.players[id]
	if !ok {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	applyPlayerFields(player, fields)
	out := copyPlayer(player)
	m.mu.Unlock()

	m.publish(out.RoomID, redis_models.TablePlayers, redis_models.EventUpdate, out)
	return nil
}

func applyPlayerFields(player *postgres.Player, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "name":
			if v, ok := value.(string); ok {
				player.Name = v
			}
		case "is_imposter":
			if v, ok := value.(bool); ok {
				player.IsImposter = v
			}
		}
	}
}

func (m *Memory) CountPlayers(ctx context.Context, roomID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, player := range m.players {
		if player.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) ListWords(ctx context.Context) ([]postgres.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	words := make([]postgres.Word, len(m.words))
	copy(words, m.words)
	return words, nil
}

func (m *Memory) ApplyGameStart(ctx context.Context, roomID uuid.UUID, word string, imposterIDs []uuid.UUID) error {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}

	chosen := make(map[uuid.UUID]bool, len(imposterIDs))
	for _, id := range imposterIDs {
		chosen[id] = true
	}
	for _, player := range m.players {
		if player.RoomID == roomID {
			player.IsImposter = chosen[player.ID]
		}
	}
	room.Phase = game_constants.PhaseInGame
	room.CurrentWord = &word
	room.LastActivity = time.Now().UTC()
	out := copyRoom(room)
	m.mu.Unlock()

	m.publish(roomID, redis_models.TablePlayers, redis_models.EventUpdate, nil)
	m.publish(roomID, redis_models.TableRooms, redis_models.EventUpdate, out)
	return nil
}

func (m *Memory) ApplyLobbyReturn(ctx context.Context, roomID uuid.UUID) error {
	m.mu.Lock()
	room, ok := m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	for _, player := range m.players {
		if player.RoomID == roomID {
			player.IsImposter = false
		}
	}
	room.Phase = game_constants.PhaseLobby
	room.CurrentWord = nil
	room.LastActivity = time.Now().UTC()
	out := copyRoom(room)
	m.mu.Unlock()

	m.publish(roomID, redis_models.TablePlayers, redis_models.EventUpdate, nil)
	m.publish(roomID, redis_models.TableRooms, redis_models.EventUpdate, out)
	return nil
}

func (m *Memory) DeleteStaleRooms(ctx context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	var stale []uuid.UUID
	for id, room := range m.rooms {
		if room.LastActivity.Before(olderThan) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	var deleted int64
	for _, id := range stale {
		if err := m.DeleteRoom(ctx, id); err == nil {
			deleted++
		}
	}
	return deleted, nil
}
