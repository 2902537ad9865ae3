package game

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session id does not resolve to a
// document, either because it never existed or because it was reclaimed.
var ErrSessionNotFound = errors.New("session not found")

// SessionPatch is a partial update to a session document. Nil fields are left
// untouched. A store must apply the whole patch atomically, including the
// player resets, so no intermediate state is ever observable.
type SessionPatch struct {
	Admin           *string
	Word            *string
	Status          *SessionStatus
	CurrentRound    *int
	RoundStartTime  *time.Time
	ClearRoundStart bool
	LastActivity    *time.Time

	// ResetRounds restores every player's round state (status playing, no
	// guesses, zero strikes). ResetScores zeroes every score.
	ResetRounds bool
	ResetScores bool

	// RemovePlayer drops the member with the given id, if present.
	RemovePlayer *string
}

// SessionStore is the document store contract the core depends on. Guess
// writes go through SavePlayer, a patch keyed by player id rather than a
// whole-array replace, so concurrent guesses from different players cannot
// clobber each other.
type SessionStore interface {
	// GetSession returns the session or ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)

	// CreateSession persists a new session. When s.ID is empty the store
	// assigns an id; the chosen id is returned either way.
	CreateSession(ctx context.Context, s *Session) (string, error)

	// UpdateSession applies the patch atomically.
	UpdateSession(ctx context.Context, id string, patch SessionPatch) error

	// SavePlayer upserts a single member's state.
	SavePlayer(ctx context.Context, sessionID string, p Player) error

	// AddPlayer appends the member unless a player with the same id already
	// exists. Reports whether the player was added.
	AddPlayer(ctx context.Context, sessionID string, p Player) (bool, error)

	// TouchPlayer refreshes a member's heartbeat timestamp.
	TouchPlayer(ctx context.Context, sessionID, playerID string, seen time.Time) error

	// FindOpenPublicSessions returns public sessions still in the lobby.
	FindOpenPublicSessions(ctx context.Context) ([]*Session, error)

	// DeleteInactiveBefore removes every session whose last activity is older
	// than the cutoff and returns the ids that were deleted.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}
