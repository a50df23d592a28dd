package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'Player' is one seat in a room. Exactly one player per room has
 * IsHost set, fixed at room creation. IsImposter only means anything
 * while the room is in-game and is cleared on every return to lobby.
 */
type Player struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID     uuid.UUID `gorm:"type:uuid;not null;index:idx_players_room" json:"room_id"`
	Name       string    `gorm:"size:50;not null" json:"name"`
	IsHost     bool      `gorm:"not null;default:false" json:"is_host"`
	IsImposter bool      `gorm:"not null;default:false" json:"is_imposter"`
	// JoinedAt defines the display order of the roster, ascending.
	JoinedAt time.Time `gorm:"not null;index:idx_players_joined_at" json:"joined_at"`

	Room Room `gorm:"foreignKey:RoomID" json:"-"`
}

func (p *Player) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	return nil
}
