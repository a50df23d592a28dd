package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	redis_models "github.com/salmanshahriar/whos-fake/models/redis"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a local Redis on the default port; skipped otherwise.
func testRedis(t *testing.T) *RedisClient {
	t.Helper()
	rc, err := InitRedis("localhost:6379", 0)
	if err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}
	t.Cleanup(func() { CloseRedis(rc) })
	return rc
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	rc := testRedis(t)
	roomID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *redis_models.RoomEvent, 1)
	unsubscribe, err := rc.SubscribeRoom(ctx, roomID, func(event *redis_models.RoomEvent) {
		received <- event
	})
	require.NoError(t, err)
	defer unsubscribe()

	payload, err := json.Marshal(map[string]string{"phase": "in-game"})
	require.NoError(t, err)
	err = rc.PublishRoomEvent(&redis_models.RoomEvent{
		RoomID:  roomID,
		Table:   redis_models.TableRooms,
		Event:   redis_models.EventUpdate,
		Payload: payload,
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, roomID, event.RoomID)
		assert.Equal(t, redis_models.TableRooms, event.Table)
		assert.Equal(t, redis_models.EventUpdate, event.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("published event never arrived")
	}
}

func TestSubscribeIsScopedToRoom(t *testing.T) {
	rc := testRedis(t)
	watched := uuid.New()
	other := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *redis_models.RoomEvent, 1)
	unsubscribe, err := rc.SubscribeRoom(ctx, watched, func(event *redis_models.RoomEvent) {
		received <- event
	})
	require.NoError(t, err)
	defer unsubscribe()

	err = rc.PublishRoomEvent(&redis_models.RoomEvent{
		RoomID: other,
		Table:  redis_models.TablePlayers,
		Event:  redis_models.EventInsert,
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		t.Fatalf("received an event for a different room: %+v", event)
	case <-time.After(300 * time.Millisecond):
	}
}
