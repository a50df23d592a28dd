package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"
	"github.com/salmanshahriar/whos-fake/models/postgres"
	"github.com/salmanshahriar/whos-fake/services/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the room lifecycle engine. It owns the rules for moving a
// room between the lobby and in-game phases, picking imposters and
// drawing the secret word. All shared state lives in the store; the
// service itself is stateless and safe for concurrent use.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func mapNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// HostRoom creates a room and seats its host in one go. A room with no
// players only ever exists between these two inserts.
func (s *Service) HostRoom(ctx context.Context) (*postgres.Room, *postgres.Player, error) {
	room, err := s.store.CreateRoom(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("creating room: %w", err)
	}

	player, err := s.RegisterHost(ctx, room)
	if err != nil {
		return nil, nil, err
	}
	room.HostPlayerID = &player.ID
	return room, player, nil
}

// RegisterHost inserts the first player of a freshly created room and
// points the room's host reference at them.
func (s *Service) RegisterHost(ctx context.Context, room *postgres.Room) (*postgres.Player, error) {
	count, err := s.store.CountPlayers(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("counting players: %w", err)
	}

	player := &postgres.Player{
		RoomID: room.ID,
		Name:   fmt.Sprintf("Player %d", count+1),
		IsHost: true,
	}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("creating host player: %w", err)
	}

	err = s.store.UpdateRoom(ctx, room.ID, map[string]interface{}{
		"host_player_id": player.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("assigning host: %w", err)
	}
	return player, nil
}

// JoinRoom seats a new player in the room matching the code. Codes are
// matched case-insensitively. Joining is only possible while the room
// sits in the lobby. An empty name gets the next "Player N" label;
// the numbering is monotonic at join time, nothing more.
func (s *Service) JoinRoom(ctx context.Context, code, name string) (*postgres.Room, *postgres.Player, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	room, err := s.store.GetRoomByCode(ctx, code)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrRoomNotFound)
	}
	if room.Phase != game_constants.PhaseLobby {
		return nil, nil, ErrRoomAlreadyStarted
	}

	if name = strings.TrimSpace(name); name == "" {
		count, err := s.store.CountPlayers(ctx, room.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("counting players: %w", err)
		}
		name = fmt.Sprintf("Player %d", count+1)
	}

	player := &postgres.Player{
		RoomID: room.ID,
		Name:   name,
	}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		return nil, nil, fmt.Errorf("creating player: %w", err)
	}
	return room, player, nil
}

// Room fetches one room by id.
func (s *Service) Room(ctx context.Context, id uuid.UUID) (*postgres.Room, error) {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrRoomNotFound)
	}
	return room, nil
}

// Players returns the room's roster in join order.
func (s *Service) Players(ctx context.Context, roomID uuid.UUID) ([]postgres.Player, error) {
	players, err := s.store.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	return players, nil
}

// Player fetches one player by id.
func (s *Service) Player(ctx context.Context, id uuid.UUID) (*postgres.Player, error) {
	player, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrPlayerNotFound)
	}
	return player, nil
}

// requireHost resolves the caller's room and checks that the session
// player actually hosts it. The original web client only checked a
// local is_host flag; enforcing it here is a deliberate hardening.
func (s *Service) requireHost(ctx context.Context, sess session.Session) (*postgres.Room, error) {
	room, err := s.store.GetRoom(ctx, sess.RoomID)
	if err != nil {
		return nil, mapNotFound(err, ErrRoomNotFound)
	}
	player, err := s.store.GetPlayer(ctx, sess.PlayerID)
	if err != nil {
		return nil, mapNotFound(err, ErrPlayerNotFound)
	}
	if !player.IsHost || player.RoomID != room.ID {
		return nil, ErrNotHost
	}
	return room, nil
}

// UpdateSettings changes the configured imposter count. Host-only,
// lobby-only; a running game keeps the count it started with.
func (s *Service) UpdateSettings(ctx context.Context, sess session.Session, numImposters int) error {
	if numImposters < 1 {
		return ErrInvalidImposters
	}
	room, err := s.requireHost(ctx, sess)
	if err != nil {
		return err
	}
	if room.Phase != game_constants.PhaseLobby {
		return ErrRoomAlreadyStarted
	}
	return s.store.UpdateRoom(ctx, room.ID, map[string]interface{}{
		"num_imposters": numImposters,
	})
}

// StartGame moves the room into the in-game phase: an unbiased shuffle
// of the roster picks num_imposters imposters, everyone else is
// cleared, and a word drawn uniformly from the bank becomes the secret
// word. Needs strictly more players than imposters.
func (s *Service) StartGame(ctx context.Context, sess session.Session) (*postgres.Room, error) {
	room, err := s.requireHost(ctx, sess)
	if err != nil {
		return nil, err
	}
	if room.Phase != game_constants.PhaseLobby {
		return nil, ErrRoomAlreadyStarted
	}

	players, err := s.store.ListPlayers(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	if len(players) < room.NumImposters+1 {
		return nil, ErrInsufficientPlayers
	}

	words, err := s.store.ListWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing words: %w", err)
	}
	if len(words) == 0 {
		return nil, ErrNoWordsAvailable
	}
	word := words[rand.Intn(len(words))].Word

	shuffled := make([]postgres.Player, len(players))
	copy(shuffled, players)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	imposterIDs := make([]uuid.UUID, 0, room.NumImposters)
	for _, p := range shuffled[:room.NumImposters] {
		imposterIDs = append(imposterIDs, p.ID)
	}

	if err := s.store.ApplyGameStart(ctx, room.ID, word, imposterIDs); err != nil {
		return nil, fmt.Errorf("starting game: %w", err)
	}
	return s.Room(ctx, room.ID)
}

// ReturnToLobby is the host's "play again": imposter flags off, word
// cleared, phase back to lobby, roster untouched.
func (s *Service) ReturnToLobby(ctx context.Context, sess session.Session) error {
	room, err := s.requireHost(ctx, sess)
	if err != nil {
		return err
	}
	if room.Phase != game_constants.PhaseInGame {
		return ErrRoomNotStarted
	}
	if err := s.store.ApplyLobbyReturn(ctx, room.ID); err != nil {
		return fmt.Errorf("returning to lobby: %w", err)
	}
	return nil
}

// CloseRoom tears the whole room down, players included. Used when the
// host explicitly abandons the room rather than waiting for the reaper.
func (s *Service) CloseRoom(ctx context.Context, sess session.Session) error {
	room, err := s.requireHost(ctx, sess)
	if err != nil {
		return err
	}
	return s.store.DeleteRoom(ctx, room.ID)
}
