package postgres

import (
	"errors"
	"math/rand"
	"time"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'Room' is one shared game room. Players reference it and are deleted
 * together with it. CurrentWord is set only while Phase is "in-game".
 */
type Room struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string     `gorm:"size:8;not null;uniqueIndex:idx_rooms_code" json:"code"`
	HostPlayerID *uuid.UUID `gorm:"type:uuid" json:"host_player_id"`
	NumImposters int        `gorm:"not null;default:1" json:"num_imposters"`
	Phase        string     `gorm:"size:16;not null;default:'lobby';index:idx_rooms_phase" json:"phase"`
	CurrentWord  *string    `gorm:"size:100" json:"current_word"`
	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	LastActivity time.Time  `gorm:"not null;index:idx_rooms_last_activity" json:"last_activity"`

	// Relationship with the players sitting in the room
	Players []*Player `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// GenerateRoomCode builds a random shareable room code. Codes are not
// globally unique by construction; BeforeCreate retries on collision.
func GenerateRoomCode() string {
	b := make([]byte, game_constants.RoomCodeLength)
	for i := range b {
		b[i] = game_constants.RoomCodeAlphabet[rand.Intn(len(game_constants.RoomCodeAlphabet))]
	}
	return string(b)
}

// With 32^4 possible codes a collision is unlikely but not impossible,
// so give up after a handful of attempts instead of looping forever.
const maxCodeAttempts = 8

var ErrRoomCodeExhausted = errors.New("could not generate a unique room code")

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.LastActivity.IsZero() {
		r.LastActivity = time.Now().UTC()
	}
	if r.Code != "" {
		return nil
	}
	for i := 0; i < maxCodeAttempts; i++ {
		code := GenerateRoomCode()
		var existing Room
		if err := tx.Where("code = ?", code).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				r.Code = code
				return nil
			}
			return err
		}
		// Code already taken, roll again
	}
	return ErrRoomCodeExhausted
}
