package game_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0ya6101/hangman-game/internal/game"
	"github.com/n0ya6101/hangman-game/internal/storage"
)

func newTestController(t *testing.T) (*game.Controller, *storage.MemStore) {
	t.Helper()
	store := storage.NewMemStore()
	return game.NewController(store, game.NewHub()), store
}

func creator(id string) game.Player {
	return game.NewPlayer(id, "player "+id, "face", time.Now())
}

func TestCreatePrivateSession(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1"), Private: true, Rounds: 3})
	require.NoError(t, err)

	assert.Len(t, s.ID, game.RoomCodeLength)
	for _, r := range s.ID {
		assert.Contains(t, game.RoomCodeAlphabet, string(r))
	}
	assert.Equal(t, game.StatusWaiting, s.Status)
	assert.Equal(t, 0, s.CurrentRound)
	assert.Equal(t, 3, s.TotalRounds)
	assert.Empty(t, s.Word)
	assert.Nil(t, s.RoundStartTime)
	assert.Equal(t, "p1", s.Admin)
	require.Len(t, s.Players, 1)
	assert.True(t, s.IsPrivate)
}

func TestCreatePublicSessionFixedRounds(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newTestController(t)

	// Round configuration is a private-session knob only.
	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1"), Rounds: 9})
	require.NoError(t, err)
	assert.Equal(t, game.PublicRounds, s.TotalRounds)
	assert.False(t, s.IsPrivate)
}

func TestCreatePrivateClampsRounds(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1"), Private: true, Rounds: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalRounds)
}

func TestStartRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1")})
	require.NoError(t, err)
	_, err = ctl.Join(ctx, s.ID, creator("p2"))
	require.NoError(t, err)

	require.NoError(t, ctl.Start(ctx, s.ID, "p2"))

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWaiting, got.Status, "non-admin start must be a no-op")
}

func TestStartBeginsFirstRound(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1")})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPlaying, got.Status)
	assert.Equal(t, 1, got.CurrentRound)
	assert.NotEmpty(t, got.Word)
	require.NotNil(t, got.RoundStartTime)
	for _, p := range got.Players {
		assert.Equal(t, game.RoundPlaying, p.RoundStatus)
		assert.Zero(t, p.Score)
		assert.Empty(t, p.Guesses)
	}
}

func TestAdvanceRoundAtCapFinishes(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1"), Private: true, Rounds: 1})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))

	before, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, 1, before.CurrentRound)

	require.NoError(t, ctl.AdvanceRound(ctx, s.ID))

	after, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, after.Status)
	assert.Equal(t, before.CurrentRound, after.CurrentRound, "currentRound never exceeds totalRounds")
	assert.Equal(t, before.Word, after.Word, "terminal transition leaves word untouched")
	require.NotNil(t, after.RoundStartTime)
	assert.True(t, before.RoundStartTime.Equal(*after.RoundStartTime), "terminal transition leaves timer untouched")
}

func TestCheckRoundEndLatchIsOneShot(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)
	ctl.SetRevealDelay(0)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1"), Private: true, Rounds: 3})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))

	snap, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	snap.Players[0].RoundStatus = game.RoundLost

	// Both detections see the same round start; only the first may schedule.
	assert.True(t, ctl.CheckRoundEnd(snap))
	assert.False(t, ctl.CheckRoundEnd(snap))

	require.Eventually(t, func() bool {
		got, err := store.GetSession(ctx, s.ID)
		return err == nil && got.CurrentRound == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Give any stray second advance a moment to land, then re-check.
	time.Sleep(50 * time.Millisecond)
	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentRound, "double detection must produce exactly one advance")

	// A new round start re-arms the latch.
	next, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	next.Players[0].RoundStatus = game.RoundWon
	assert.True(t, ctl.CheckRoundEnd(next))
}

func TestCheckRoundEndTimeout(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1")})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))

	snap, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, game.RoundPlaying, snap.Players[0].RoundStatus)

	// Nobody resolved, 31 seconds on the clock: the timeout fires.
	start := *snap.RoundStartTime
	ctl.SetClock(func() time.Time { return start.Add(31 * time.Second) })
	assert.True(t, ctl.CheckRoundEnd(snap))
}

func TestCheckRoundEndNotOver(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1")})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))

	snap, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ctl.CheckRoundEnd(snap), "round with time left and unresolved players is not over")
}

func TestGuessPersistsAndScores(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1"), Private: true, Rounds: 2})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))

	playing, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)

	// Guess the whole word letter by letter.
	seen := map[rune]bool{}
	for _, r := range playing.Word {
		if seen[r] {
			continue
		}
		seen[r] = true
		_, err := ctl.Guess(ctx, s.ID, "p1", string(r))
		require.NoError(t, err)
	}

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	p := got.Player("p1")
	require.NotNil(t, p)
	assert.Equal(t, game.RoundWon, p.RoundStatus)
	assert.Equal(t, 60, p.Score)
	assert.Zero(t, p.IncorrectGuesses)
}

func TestGuessOutsidePlayingIsDropped(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1")})
	require.NoError(t, err)

	// Still in the lobby: the guess is silently dropped, no error.
	_, err = ctl.Guess(ctx, s.ID, "p1", "A")
	require.NoError(t, err)

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Player("p1").Guesses)
}

func TestGuessRefreshesLastActivity(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1")})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))

	// Age the session, then make progress.
	stale := time.Now().Add(-3 * time.Hour)
	require.NoError(t, store.UpdateSession(ctx, s.ID, game.SessionPatch{LastActivity: &stale}))

	playing, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	_, err = ctl.Guess(ctx, s.ID, "p1", string(playing.Word[0]))
	require.NoError(t, err)

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.LastActivity.After(time.Now().Add(-time.Minute)),
		"an active session must not look reclaimable")
}

func TestResetToLobby(t *testing.T) {
	ctx := context.Background()
	ctl, store := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1"), Private: true, Rounds: 1})
	require.NoError(t, err)
	require.NoError(t, ctl.Start(ctx, s.ID, "p1"))
	require.NoError(t, ctl.AdvanceRound(ctx, s.ID))

	finished, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, game.StatusFinished, finished.Status)

	// Only the admin can bring it back to the lobby.
	require.NoError(t, ctl.ResetToLobby(ctx, s.ID, "nobody"))
	still, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, still.Status)

	require.NoError(t, ctl.ResetToLobby(ctx, s.ID, "p1"))
	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusWaiting, got.Status)
	assert.Empty(t, got.Word)
	assert.Nil(t, got.RoundStartTime)
	assert.Equal(t, 0, got.CurrentRound)
	for _, p := range got.Players {
		assert.Zero(t, p.Score)
		assert.Equal(t, game.RoundPlaying, p.RoundStatus)
	}
}

func TestJoinIsAppendIfAbsent(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newTestController(t)

	s, err := ctl.Create(ctx, game.CreateConfig{Creator: creator("p1")})
	require.NoError(t, err)

	got, err := ctl.Join(ctx, s.ID, creator("p2"))
	require.NoError(t, err)
	require.Len(t, got.Players, 2)

	// Joining again must not duplicate the member.
	got, err = ctl.Join(ctx, s.ID, creator("p2"))
	require.NoError(t, err)
	assert.Len(t, got.Players, 2)
	ids := make([]string, 0, len(got.Players))
	for _, p := range got.Players {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, "p1,p2", strings.Join(ids, ","))
}
