package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	redis_models "github.com/salmanshahriar/whos-fake/models/redis"
	redis_utils "github.com/salmanshahriar/whos-fake/services/redis/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// PublishRoomEvent fans a change notification out to everyone
// subscribed to the room's channel.
// Channel format: "room:{id}:events"
func (rc *RedisClient) PublishRoomEvent(event *redis_models.RoomEvent) error {
	key := redis_utils.FormatRoomEventsKey(event.RoomID)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling room event: %v", err)
	}
	if err := rc.client.Publish(rc.ctx, key, data).Err(); err != nil {
		return fmt.Errorf("error publishing room event: %v", err)
	}
	return nil
}

// SubscribeRoom delivers every change event for one room to onChange
// until the returned unsubscribe function is called or ctx is
// cancelled. Events that fail to decode are dropped with a log line;
// the poll fallback covers whatever the push channel misses.
func (rc *RedisClient) SubscribeRoom(ctx context.Context, roomID uuid.UUID, onChange func(*redis_models.RoomEvent)) (func(), error) {
	key := redis_utils.FormatRoomEventsKey(roomID)
	pubsub := rc.client.Subscribe(ctx, key)

	// Force the subscription onto the wire before returning so the
	// caller can't miss events published right after subscribing.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("error subscribing to room channel: %v", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var event redis_models.RoomEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("Dropping undecodable room event on %s: %v", key, err)
					continue
				}
				onChange(&event)
			}
		}
	}()

	unsubscribe := func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("Error closing room subscription %s: %v", key, err)
		}
	}
	return unsubscribe, nil
}
