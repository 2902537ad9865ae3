package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/n0ya6101/hangman-game/internal/logging"
)

// Controller owns the session state machine: waiting -> playing (round N) ->
// playing (round N+1) -> finished, with resetToLobby back to waiting. It is
// the single designated writer for round transitions; round-end detection is
// centralized here instead of raced by every connected client.
type Controller struct {
	store SessionStore
	hub   *Hub

	// now and revealDelay are swappable for tests.
	now         func() time.Time
	revealDelay time.Duration

	mu       sync.Mutex
	latches  map[string]*roundLatch
	monitors map[string]struct{}
}

// NewController wires a controller to its store and snapshot hub.
func NewController(store SessionStore, hub *Hub) *Controller {
	return &Controller{
		store:       store,
		hub:         hub,
		now:         time.Now,
		revealDelay: RevealDelay,
		latches:     make(map[string]*roundLatch),
		monitors:    make(map[string]struct{}),
	}
}

// roundLatch makes round-advance one-shot per round. It is keyed by the
// round's start timestamp: observing a new RoundStartTime re-arms it, seeing
// the same end condition twice does not.
type roundLatch struct {
	mu       sync.Mutex
	firedFor time.Time
}

func (l *roundLatch) tryArm(start time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.firedFor.Equal(start) {
		return false
	}
	l.firedFor = start
	return true
}

func (c *Controller) latchFor(sessionID string) *roundLatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.latches[sessionID]; ok {
		return l
	}
	l := &roundLatch{}
	c.latches[sessionID] = l
	return l
}

// CreateConfig configures a new session.
type CreateConfig struct {
	Creator Player
	Private bool
	// Rounds applies to private sessions only; public sessions always play
	// PublicRounds. Values below 1 are clamped to 1.
	Rounds int
}

// Create produces a new session in the lobby state with the creator as its
// only member and round-advance authority.
func (c *Controller) Create(ctx context.Context, cfg CreateConfig) (*Session, error) {
	now := c.now()
	rounds := PublicRounds
	if cfg.Private {
		rounds = cfg.Rounds
		if rounds < 1 {
			rounds = 1
		}
	}

	creator := cfg.Creator
	creator.ResetRound()
	creator.Score = 0
	if creator.LastSeen.IsZero() {
		creator.LastSeen = now
	}
	if creator.JoinedAt.IsZero() {
		creator.JoinedAt = now
	}

	s := &Session{
		Admin:        creator.ID,
		Players:      []Player{creator},
		Word:         "",
		Status:       StatusWaiting,
		CurrentRound: 0,
		TotalRounds:  rounds,
		IsPrivate:    cfg.Private,
		CreatedAt:    now,
		LastActivity: now,
	}

	if cfg.Private {
		code, err := NewRoomCode(ctx, c.store)
		if err != nil {
			return nil, fmt.Errorf("generate room code: %w", err)
		}
		s.ID = code
	}

	id, err := c.store.CreateSession(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.ID = id
	logging.Infof("created %s session %s for player %s (%d rounds)",
		map[bool]string{true: "private", false: "public"}[cfg.Private], id, creator.ID, rounds)
	return s, nil
}

// Join adds a player to the session unless they are already a member.
// Adding is append-if-absent at the store layer, so concurrent joins are safe.
func (c *Controller) Join(ctx context.Context, sessionID string, p Player) (*Session, error) {
	now := c.now()
	p.ResetRound()
	p.Score = 0
	p.LastSeen = now
	p.JoinedAt = now

	added, err := c.store.AddPlayer(ctx, sessionID, p)
	if err != nil {
		return nil, err
	}
	s, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if added {
		logging.Debugf("player %s joined session %s", p.ID, sessionID)
		c.hub.Broadcast(s)
	}
	return s, nil
}

// Guess applies a letter guess for a player and persists the result as a
// per-player patch. Guesses outside the allowed state are silently dropped
// and the current snapshot is returned unchanged.
func (c *Controller) Guess(ctx context.Context, sessionID, playerID, letter string) (*Session, error) {
	s, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out, applied := ApplyGuess(s, playerID, letter)
	if !applied {
		return s, nil
	}

	out.Player.LastSeen = c.now()
	if err := c.store.SavePlayer(ctx, sessionID, out.Player); err != nil {
		logging.Warnf("saving guess for player %s in session %s: %v", playerID, sessionID, err)
		return s, nil
	}

	s, err = c.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.hub.Broadcast(s)
	c.CheckRoundEnd(s)
	return s, nil
}

// Start begins the game: scores and the round counter are reset, then the
// first round is advanced into. Only the session admin may start.
func (c *Controller) Start(ctx context.Context, sessionID, callerID string) error {
	s, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Admin != callerID {
		logging.Debugf("ignoring start of session %s from non-admin %s", sessionID, callerID)
		return nil
	}

	patch := SessionPatch{
		CurrentRound: lo.ToPtr(0),
		ResetScores:  true,
		LastActivity: lo.ToPtr(c.now()),
	}
	if err := c.store.UpdateSession(ctx, sessionID, patch); err != nil {
		return err
	}
	if err := c.AdvanceRound(ctx, sessionID); err != nil {
		return err
	}
	c.ensureMonitor(sessionID)
	return nil
}

// ResetToLobby is the explicit "play again": back to waiting with all word,
// timer, score and round state cleared. Admin only.
func (c *Controller) ResetToLobby(ctx context.Context, sessionID, callerID string) error {
	s, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Admin != callerID {
		logging.Debugf("ignoring reset of session %s from non-admin %s", sessionID, callerID)
		return nil
	}

	patch := SessionPatch{
		Status:          lo.ToPtr(StatusWaiting),
		Word:            lo.ToPtr(""),
		CurrentRound:    lo.ToPtr(0),
		ClearRoundStart: true,
		ResetRounds:     true,
		ResetScores:     true,
		LastActivity:    lo.ToPtr(c.now()),
	}
	if err := c.store.UpdateSession(ctx, sessionID, patch); err != nil {
		return err
	}
	s, err = c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	c.hub.Broadcast(s)
	return nil
}

// AdvanceRound moves the session to its next round, or to finished once the
// round cap is reached. The whole transition is one atomic multi-field write:
// a new word is never observable alongside stale player state.
func (c *Controller) AdvanceRound(ctx context.Context, sessionID string) error {
	s, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if s.CurrentRound >= s.TotalRounds {
		// Terminal: word and round timer are left untouched.
		patch := SessionPatch{
			Status:       lo.ToPtr(StatusFinished),
			LastActivity: lo.ToPtr(c.now()),
		}
		if err := c.store.UpdateSession(ctx, sessionID, patch); err != nil {
			return err
		}
		logging.Infof("session %s finished after %d rounds", sessionID, s.CurrentRound)
	} else {
		now := c.now()
		patch := SessionPatch{
			Word:           lo.ToPtr(RandomWord()),
			Status:         lo.ToPtr(StatusPlaying),
			CurrentRound:   lo.ToPtr(s.CurrentRound + 1),
			RoundStartTime: lo.ToPtr(now),
			ResetRounds:    true,
			LastActivity:   lo.ToPtr(now),
		}
		if err := c.store.UpdateSession(ctx, sessionID, patch); err != nil {
			return err
		}
		logging.Debugf("session %s advanced to round %d/%d", sessionID, s.CurrentRound+1, s.TotalRounds)
	}

	s, err = c.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	c.hub.Broadcast(s)
	return nil
}

// CheckRoundEnd decides whether the current round is over: every player
// resolved, or the 30 second budget since RoundStartTime elapsed. On the
// first detection for a given round it schedules the advance after the reveal
// delay; repeated detections for the same round are no-ops thanks to the
// latch. Reports whether an advance was scheduled by this call.
func (c *Controller) CheckRoundEnd(s *Session) bool {
	if s == nil || s.Status != StatusPlaying || s.RoundStartTime == nil {
		return false
	}
	if !s.AllResolved() && !s.RoundExpired(c.now()) {
		return false
	}
	if !c.latchFor(s.ID).tryArm(*s.RoundStartTime) {
		return false
	}

	sessionID := s.ID
	delay := c.revealDelay
	go func() {
		// Reveal delay: players get to see the final board.
		time.Sleep(delay)
		if err := c.AdvanceRound(context.Background(), sessionID); err != nil {
			logging.Warnf("advancing session %s: %v", sessionID, err)
		}
	}()
	return true
}

// ensureMonitor starts the per-session round watchdog if it is not running.
// The watchdog re-derives the deadline from the stored RoundStartTime on
// every tick, so no client-local countdown ever decides a round.
func (c *Controller) ensureMonitor(sessionID string) {
	c.mu.Lock()
	if _, ok := c.monitors[sessionID]; ok {
		c.mu.Unlock()
		return
	}
	c.monitors[sessionID] = struct{}{}
	c.mu.Unlock()
	go c.monitor(sessionID)
}

func (c *Controller) monitor(sessionID string) {
	defer func() {
		c.mu.Lock()
		delete(c.monitors, sessionID)
		c.mu.Unlock()
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s, err := c.store.GetSession(context.Background(), sessionID)
		if errors.Is(err, ErrSessionNotFound) {
			c.hub.NotifyGone(sessionID)
			return
		}
		if err != nil {
			logging.Warnf("round monitor for session %s: %v", sessionID, err)
			continue
		}
		switch s.Status {
		case StatusPlaying:
			c.CheckRoundEnd(s)
		case StatusFinished:
			// Start re-arms the monitor on play-again.
			return
		}
	}
}
