package game

import (
	"context"
	"log"
	"time"

	game_constants "github.com/salmanshahriar/whos-fake/constants/game"
)

// SweepStaleRooms deletes every room that has seen no activity for the
// stale threshold, cascading to its players. Idempotent: sweeping with
// nothing stale is a no-op, and concurrent sweeps at worst race to
// delete the same rooms.
func (s *Service) SweepStaleRooms(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-game_constants.StaleRoomThreshold)
	return s.store.DeleteStaleRooms(ctx, cutoff)
}

// RunReaper sweeps on an interval until ctx is cancelled. Deployments
// that trigger GET /cleanup from an external cron don't need this.
func (s *Service) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.SweepStaleRooms(ctx)
			if err != nil {
				log.Printf("Error sweeping stale rooms: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("Reaped %d stale rooms", deleted)
			}
		}
	}
}
