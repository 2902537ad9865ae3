package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0ya6101/hangman-game/internal/game"
	"github.com/n0ya6101/hangman-game/internal/storage"
)

func seedSession(t *testing.T, store *storage.MemStore, id string, status game.SessionStatus, lastActivity time.Time) {
	t.Helper()
	_, err := store.CreateSession(context.Background(), &game.Session{
		ID:           id,
		Admin:        "p1",
		Players:      []game.Player{game.NewPlayer("p1", "p1", "", lastActivity)},
		Status:       status,
		TotalRounds:  game.PublicRounds,
		CreatedAt:    lastActivity,
		LastActivity: lastActivity,
	})
	require.NoError(t, err)
}

func TestSweepDeletesOnlyInactiveSessions(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	hub := game.NewHub()
	reaper := game.NewReaper(store, hub)

	now := time.Now()
	reaper.SetClock(func() time.Time { return now })

	seedSession(t, store, "fresh", game.StatusPlaying, now.Add(-1*time.Hour))
	seedSession(t, store, "stale", game.StatusWaiting, now.Add(-3*time.Hour))
	seedSession(t, store, "ancient", game.StatusFinished, now.Add(-25*time.Hour))

	n, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.GetSession(ctx, "fresh")
	assert.NoError(t, err, "session inside the threshold must survive")
	_, err = store.GetSession(ctx, "stale")
	assert.True(t, errors.Is(err, game.ErrSessionNotFound))
	_, err = store.GetSession(ctx, "ancient")
	assert.True(t, errors.Is(err, game.ErrSessionNotFound))
}

// Reclamation ignores status entirely: finished sessions age out like any other.
func TestSweepIsUnconditionalOnStatus(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	reaper := game.NewReaper(store, game.NewHub())

	now := time.Now()
	reaper.SetClock(func() time.Time { return now })

	seedSession(t, store, "done", game.StatusFinished, now.Add(-3*time.Hour))
	seedSession(t, store, "mid-game", game.StatusPlaying, now.Add(-3*time.Hour))

	n, err := reaper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSweepNotifiesWatchers(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	hub := game.NewHub()
	reaper := game.NewReaper(store, hub)

	now := time.Now()
	reaper.SetClock(func() time.Time { return now })

	seedSession(t, store, "stale", game.StatusWaiting, now.Add(-3*time.Hour))

	ch := make(chan []byte, 1)
	hub.Watch("stale", ch)
	defer hub.Unwatch("stale", ch)

	_, err := reaper.Sweep(ctx)
	require.NoError(t, err)

	select {
	case data := <-ch:
		assert.Contains(t, string(data), `"gone"`)
	case <-time.After(time.Second):
		t.Fatalf("watcher was not told the session is gone")
	}
}
