package game_test

import (
	"context"
	"testing"
	"time"

	"github.com/salmanshahriar/whos-fake/services/game"
	"github.com/salmanshahriar/whos-fake/services/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepStaleRooms(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	stale, staleHost, err := svc.HostRoom(ctx)
	require.NoError(t, err)
	_, _, err = svc.JoinRoom(ctx, stale.Code, "")
	require.NoError(t, err)

	fresh, _, err := svc.HostRoom(ctx)
	require.NoError(t, err)

	mem.SetLastActivity(stale.ID, time.Now().UTC().Add(-11*time.Minute))
	mem.SetLastActivity(fresh.ID, time.Now().UTC().Add(-9*time.Minute))

	deleted, err := svc.SweepStaleRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = svc.Room(ctx, stale.ID)
	assert.ErrorIs(t, err, game.ErrRoomNotFound)

	// Players go down with the room.
	_, err = svc.Player(ctx, staleHost.ID)
	assert.ErrorIs(t, err, game.ErrPlayerNotFound)

	_, err = svc.Room(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestSweepStaleRoomsNothingStale(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.HostRoom(ctx)
	require.NoError(t, err)

	deleted, err := svc.SweepStaleRooms(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestRunReaperStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunReaper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}

func TestRunReaperSweeps(t *testing.T) {
	svc, mem := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, _, err := svc.HostRoom(ctx)
	require.NoError(t, err)
	mem.SetLastActivity(room.ID, time.Now().UTC().Add(-11*time.Minute))

	go svc.RunReaper(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		_, err := svc.Room(ctx, room.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond, "stale room should be reaped")
}
