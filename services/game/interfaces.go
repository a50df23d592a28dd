package game

import (
	"context"
	"time"

	"github.com/salmanshahriar/whos-fake/models/postgres"

	"github.com/google/uuid"
)

// Store is everything the lifecycle engine needs from the room store.
// The PostgreSQL implementation lives in services/store; tests use an
// in-memory fake. Not-found conditions surface as
// gorm.ErrRecordNotFound from either.
type Store interface {
	CreateRoom(ctx context.Context) (*postgres.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*postgres.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*postgres.Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error

	CreatePlayer(ctx context.Context, player *postgres.Player) error
	GetPlayer(ctx context.Context, id uuid.UUID) (*postgres.Player, error)
	ListPlayers(ctx context.Context, roomID uuid.UUID) ([]postgres.Player, error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	CountPlayers(ctx context.Context, roomID uuid.UUID) (int64, error)

	ListWords(ctx context.Context) ([]postgres.Word, error)

	ApplyGameStart(ctx context.Context, roomID uuid.UUID, word string, imposterIDs []uuid.UUID) error
	ApplyLobbyReturn(ctx context.Context, roomID uuid.UUID) error
	DeleteStaleRooms(ctx context.Context, olderThan time.Time) (int64, error)
}
