package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/*
 * 'RoomEvent' is the audit trail of change notifications published for
 * a room. The live channel is Redis pub/sub; this table keeps the same
 * envelopes queryable after the fact (debugging missed updates,
 * reconstructing a game). Rows go away with the room.
 */
type RoomEvent struct {
	ID      uint           `gorm:"primaryKey" json:"id"`
	RoomID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_room_events_room" json:"room_id"`
	Table   string         `gorm:"column:table_name;size:16;not null" json:"table"`
	Event   string         `gorm:"size:16;not null" json:"event"`
	Payload datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	SentAt  time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"sent_at"`

	Room Room `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
}
