package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"
	"github.com/salmanshahriar/whos-fake/models/postgres"
	redis_models "github.com/salmanshahriar/whos-fake/models/redis"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notifier is where row-change events go. Satisfied by the Redis
// client; nil disables push entirely (polling still works).
type Notifier interface {
	PublishRoomEvent(event *redis_models.RoomEvent) error
}

// Store is the PostgreSQL-backed room store. Every mutation touches
// the room's last_activity and publishes a change event; publishing is
// best effort because the poll fallback covers lost notifications.
type Store struct {
	db       *gorm.DB
	notifier Notifier
}

func New(db *gorm.DB, notifier Notifier) *Store {
	return &Store{db: db, notifier: notifier}
}

// notify records the change in the room_events audit table and fans it
// out over the push channel. Room deletions are publish-only: the
// audit rows are cascading away with the room anyway.
func (s *Store) notify(roomID uuid.UUID, table, event string, row interface{}) {
	var payload json.RawMessage
	if row != nil {
		data, err := json.Marshal(row)
		if err != nil {
			log.Printf("Error encoding %s %s event for room %s: %v", table, event, roomID, err)
			return
		}
		payload = data
	}

	if !(table == redis_models.TableRooms && event == redis_models.EventDelete) {
		audit := postgres.RoomEvent{
			RoomID:  roomID,
			Table:   table,
			Event:   event,
			Payload: datatypes.JSON(payload),
		}
		if err := s.db.Create(&audit).Error; err != nil {
			log.Printf("Error recording %s %s event for room %s: %v", table, event, roomID, err)
		}
	}

	if s.notifier == nil {
		return
	}
	err := s.notifier.PublishRoomEvent(&redis_models.RoomEvent{
		RoomID:  roomID,
		Table:   table,
		Event:   event,
		Payload: payload,
	})
	if err != nil {
		log.Printf("Error publishing %s %s event for room %s: %v", table, event, roomID, err)
	}
}

// CreateRoom inserts a fresh room in the lobby phase with the default
// imposter count and no host. The room code is generated by the
// model's BeforeCreate hook.
func (s *Store) CreateRoom(ctx context.Context) (*postgres.Room, error) {
	room := postgres.Room{
		NumImposters: 1,
		Phase:        game_constants.PhaseLobby,
	}
	if err := s.db.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, err
	}
	s.notify(room.ID, redis_models.TableRooms, redis_models.EventInsert, room)
	return &room, nil
}

func (s *Store) GetRoom(ctx context.Context, id uuid.UUID) (*postgres.Room, error) {
	var room postgres.Room
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Store) GetRoomByCode(ctx context.Context, code string) (*postgres.Room, error) {
	var room postgres.Room
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom applies a partial update and bumps last_activity.
func (s *Store) UpdateRoom(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["last_activity"] = time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&postgres.Room{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	if room, err := s.GetRoom(ctx, id); err == nil {
		s.notify(id, redis_models.TableRooms, redis_models.EventUpdate, room)
	}
	return nil
}

// DeleteRoom removes a room and everything hanging off it. The players
// are deleted explicitly even though the FK cascades, matching the
// belt-and-braces order the rest of the code assumes.
func (s *Store) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&postgres.Player{}).Error; err != nil {
			return err
		}
		if err := tx.Where("room_id = ?", id).Delete(&postgres.RoomEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&postgres.Room{}).Error
	})
	if err != nil {
		return err
	}
	s.notify(id, redis_models.TableRooms, redis_models.EventDelete, room)
	return nil
}

// CreatePlayer inserts a player and counts as room activity.
func (s *Store) CreatePlayer(ctx context.Context, player *postgres.Player) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(player).Error; err != nil {
			return err
		}
		return tx.Model(&postgres.Room{}).Where("id = ?", player.RoomID).
			Update("last_activity", time.Now().UTC()).Error
	})
	if err != nil {
		return err
	}
	s.notify(player.RoomID, redis_models.TablePlayers, redis_models.EventInsert, player)
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, id uuid.UUID) (*postgres.Player, error) {
	var player postgres.Player
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// ListPlayers returns the room's roster in join order.
func (s *Store) ListPlayers(ctx context.Context, roomID uuid.UUID) ([]postgres.Player, error) {
	var players []postgres.Player
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at asc").
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (s *Store) UpdatePlayer(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	var player postgres.Player
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&player).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&player).Updates(fields).Error; err != nil {
		return err
	}
	s.notify(player.RoomID, redis_models.TablePlayers, redis_models.EventUpdate, player)
	return nil
}

func (s *Store) CountPlayers(ctx context.Context, roomID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&postgres.Player{}).
		Where("room_id = ?", roomID).Count(&count).Error
	return count, err
}

func (s *Store) ListWords(ctx context.Context) ([]postgres.Word, error) {
	var words []postgres.Word
	if err := s.db.WithContext(ctx).Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

// ApplyGameStart flips the room into the in-game phase: the chosen
// players become imposters, everyone else is cleared, and the room
// gets its word. One transaction, so no client can observe an in-game
// room with no imposters assigned.
func (s *Store) ApplyGameStart(ctx context.Context, roomID uuid.UUID, word string, imposterIDs []uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&postgres.Player{}).
			Where("room_id = ?", roomID).
			Update("is_imposter", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&postgres.Player{}).
			Where("id IN ?", imposterIDs).
			Update("is_imposter", true).Error; err != nil {
			return err
		}
		return tx.Model(&postgres.Room{}).Where("id = ?", roomID).Updates(map[string]interface{}{
			"phase":         game_constants.PhaseInGame,
			"current_word":  word,
			"last_activity": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return err
	}
	s.notify(roomID, redis_models.TablePlayers, redis_models.EventUpdate, nil)
	if room, err := s.GetRoom(ctx, roomID); err == nil {
		s.notify(roomID, redis_models.TableRooms, redis_models.EventUpdate, room)
	}
	return nil
}

// ApplyLobbyReturn is the inverse of ApplyGameStart: imposter flags
// off, word gone, phase back to lobby. The roster is left alone.
func (s *Store) ApplyLobbyReturn(ctx context.Context, roomID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&postgres.Player{}).
			Where("room_id = ?", roomID).
			Update("is_imposter", false).Error; err != nil {
			return err
		}
		return tx.Model(&postgres.Room{}).Where("id = ?", roomID).Updates(map[string]interface{}{
			"phase":         game_constants.PhaseLobby,
			"current_word":  nil,
			"last_activity": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return err
	}
	s.notify(roomID, redis_models.TablePlayers, redis_models.EventUpdate, nil)
	if room, err := s.GetRoom(ctx, roomID); err == nil {
		s.notify(roomID, redis_models.TableRooms, redis_models.EventUpdate, room)
	}
	return nil
}

// DeleteStaleRooms removes every room whose last activity is older
// than the cutoff, players included. Re-running with nothing stale is
// a no-op. A room that comes back to life between the check and the
// delete can still be reaped; the players just host a new one.
func (s *Store) DeleteStaleRooms(ctx context.Context, olderThan time.Time) (int64, error) {
	var stale []postgres.Room
	err := s.db.WithContext(ctx).
		Where("last_activity < ?", olderThan).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, room := range stale {
		if err := s.DeleteRoom(ctx, room.ID); err != nil {
			// Someone else may have deleted it first; keep sweeping.
			log.Printf("Error deleting stale room %s: %v", room.ID, err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
