package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// FormatRoomEventsKey builds the pub/sub channel name carrying change
// notifications for a single room.
func FormatRoomEventsKey(roomID uuid.UUID) string {
	return fmt.Sprintf("room:%s:events", roomID)
}
