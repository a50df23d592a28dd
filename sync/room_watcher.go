package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"
	"github.com/salmanshahriar/whos-fake/models/postgres"
	redis_models "github.com/salmanshahriar/whos-fake/models/redis"
	"github.com/salmanshahriar/whos-fake/services/game"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fetcher is the read side of the room store the watcher polls.
type Fetcher interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*postgres.Room, error)
	ListPlayers(ctx context.Context, roomID uuid.UUID) ([]postgres.Player, error)
}

// Subscriber is the push side. Nil means poll-only, which is how the
// watcher runs in tests.
type Subscriber interface {
	SubscribeRoom(ctx context.Context, roomID uuid.UUID, onChange func(*redis_models.RoomEvent)) (func(), error)
}

/*
 * RoomWatcher keeps one client's view of a room converging on what the
 * store holds, through two independent producers feeding the same
 * replace-only reducer:
 *
 *   - push: room events replace the room snapshot directly; player
 *     events trigger a full ordered re-fetch of the roster.
 *   - pull: a fixed-interval re-fetch of the room row, covering
 *     notifications that got lost or delayed.
 *
 * No ordering is guaranteed between the two; whichever snapshot lands
 * last wins. That gives eventual consistency within one poll interval
 * or one notification round-trip, whichever is faster.
 */
type RoomWatcher struct {
	roomID     uuid.UUID
	fetcher    Fetcher
	subscriber Subscriber
	interval   time.Duration

	// OnRoom and OnPlayers receive every accepted snapshot. OnPhase
	// fires whenever the observed phase differs from the last one seen
	// (including the very first snapshot); the view layer uses it to
	// navigate between lobby and game. OnGone fires once when the room
	// stops existing.
	OnRoom    func(room *postgres.Room)
	OnPlayers func(players []postgres.Player)
	OnPhase   func(phase string)
	OnGone    func()

	mu        sync.Mutex
	lastPhase string
	gone      bool
}

// NewRoomWatcher builds a watcher with the standard poll interval.
// Pass a nil subscriber for poll-only operation.
func NewRoomWatcher(roomID uuid.UUID, fetcher Fetcher, subscriber Subscriber) *RoomWatcher {
	return &RoomWatcher{
		roomID:     roomID,
		fetcher:    fetcher,
		subscriber: subscriber,
		interval:   game_constants.RoomPollInterval,
	}
}

// SetInterval overrides the poll interval. Tests shrink it.
func (w *RoomWatcher) SetInterval(d time.Duration) {
	w.interval = d
}

// Run watches until ctx is cancelled. The subscription and the poll
// ticker are both torn down before it returns; nothing keeps firing
// after a view unmounts.
func (w *RoomWatcher) Run(ctx context.Context) error {
	if w.subscriber != nil {
		unsubscribe, err := w.subscriber.SubscribeRoom(ctx, w.roomID, func(event *redis_models.RoomEvent) {
			w.handleEvent(ctx, event)
		})
		if err != nil {
			// Degrade to polling alone rather than failing the view.
			log.Printf("Error subscribing to room %s, falling back to polling: %v", w.roomID, err)
		} else {
			defer unsubscribe()
		}
	}

	// Seed both halves of the view before the first tick.
	w.refreshRoom(ctx)
	w.refreshPlayers(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.refreshRoom(ctx)
		}
	}
}

func (w *RoomWatcher) handleEvent(ctx context.Context, event *redis_models.RoomEvent) {
	switch event.Table {
	case redis_models.TableRooms:
		if event.Event == redis_models.EventDelete {
			w.markGone()
			return
		}
		var room postgres.Room
		if err := json.Unmarshal(event.Payload, &room); err != nil {
			log.Printf("Error decoding room event payload for %s: %v", w.roomID, err)
			return
		}
		w.applyRoom(&room)
	case redis_models.TablePlayers:
		// Player payloads are just a cue; always re-fetch the full
		// ordered roster so the view never sees a partial update.
		w.refreshPlayers(ctx)
	}
}

func (w *RoomWatcher) refreshRoom(ctx context.Context) {
	room, err := w.fetcher.GetRoom(ctx, w.roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, game.ErrRoomNotFound) {
			w.markGone()
			return
		}
		if ctx.Err() == nil {
			log.Printf("Error polling room %s: %v", w.roomID, err)
		}
		return
	}
	w.applyRoom(room)
}

func (w *RoomWatcher) refreshPlayers(ctx context.Context) {
	players, err := w.fetcher.ListPlayers(ctx, w.roomID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Error fetching players for room %s: %v", w.roomID, err)
		}
		return
	}
	if w.OnPlayers != nil {
		w.OnPlayers(players)
	}
}

// applyRoom is the reducer: replace, never merge.
func (w *RoomWatcher) applyRoom(room *postgres.Room) {
	w.mu.Lock()
	phaseChanged := room.Phase != w.lastPhase
	w.lastPhase = room.Phase
	w.mu.Unlock()

	if w.OnRoom != nil {
		w.OnRoom(room)
	}
	if phaseChanged && w.OnPhase != nil {
		w.OnPhase(room.Phase)
	}
}

func (w *RoomWatcher) markGone() {
	w.mu.Lock()
	already := w.gone
	w.gone = true
	w.mu.Unlock()

	if !already && w.OnGone != nil {
		w.OnGone()
	}
}
