package game

import (
	"time"
)

// SessionStatus is the lifecycle state of a session document.
type SessionStatus string

const (
	StatusWaiting  SessionStatus = "waiting"
	StatusPlaying  SessionStatus = "playing"
	StatusFinished SessionStatus = "finished"
)

// RoundStatus is a single player's state within the current round.
type RoundStatus string

const (
	RoundPlaying RoundStatus = "playing"
	RoundWon     RoundStatus = "won"
	RoundLost    RoundStatus = "lost"
)

const (
	// MaxIncorrectGuesses is the six-strikes loss threshold, independent of word length.
	MaxIncorrectGuesses = 6

	// RoundDuration is the wall-clock budget for one round, measured from RoundStartTime.
	RoundDuration = 30 * time.Second

	// RevealDelay is how long the final board stays visible before the next round starts.
	RevealDelay = 3 * time.Second

	// PublicRounds is the fixed round count for public sessions.
	PublicRounds = 5

	// MaxPublicPlayers is the capacity ceiling applied during matchmaking.
	MaxPublicPlayers = 6

	// AdminIdleTimeout is how long a waiting session's admin may go without a
	// heartbeat before matchmaking evicts them.
	AdminIdleTimeout = 3 * time.Minute

	// ReclaimAfter is the inactivity threshold for the reclamation sweep.
	ReclaimAfter = 2 * time.Hour

	// RoomCodeLength is the length of private room codes.
	RoomCodeLength = 6
)

// RoomCodeAlphabet is the character set private room codes are drawn from.
const RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Player is one participant embedded in a session document.
type Player struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Face             string      `json:"face"`
	Score            int         `json:"score"`
	RoundStatus      RoundStatus `json:"roundStatus"`
	Guesses          []string    `json:"guesses"`
	IncorrectGuesses int         `json:"incorrectGuesses"`
	LastSeen         time.Time   `json:"lastSeen"`
	JoinedAt         time.Time   `json:"joinedAt"`
}

// HasGuessed reports whether the player already guessed the given letter this round.
func (p *Player) HasGuessed(letter string) bool {
	for _, g := range p.Guesses {
		if g == letter {
			return true
		}
	}
	return false
}

// ResetRound clears the player's per-round state.
func (p *Player) ResetRound() {
	p.RoundStatus = RoundPlaying
	p.Guesses = nil
	p.IncorrectGuesses = 0
}

// Session is one shared game room document.
type Session struct {
	ID             string        `json:"id"`
	Admin          string        `json:"admin"`
	Players        []Player      `json:"players"`
	Word           string        `json:"word"`
	Status         SessionStatus `json:"status"`
	CurrentRound   int           `json:"currentRound"`
	TotalRounds    int           `json:"totalRounds"`
	RoundStartTime *time.Time    `json:"roundStartTime"`
	IsPrivate      bool          `json:"isPrivate"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastActivity   time.Time     `json:"lastActivity"`
}

// Player returns the member with the given id, or nil.
func (s *Session) Player(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// HasPlayer reports whether the given id is already a member.
func (s *Session) HasPlayer(id string) bool {
	return s.Player(id) != nil
}

// AllResolved reports whether every player has finished the current round.
func (s *Session) AllResolved() bool {
	for i := range s.Players {
		if s.Players[i].RoundStatus == RoundPlaying {
			return false
		}
	}
	return true
}

// RoundExpired reports whether the round timer has run out as of now.
// Sessions without a round start timestamp never expire.
func (s *Session) RoundExpired(now time.Time) bool {
	if s.RoundStartTime == nil {
		return false
	}
	return now.Sub(*s.RoundStartTime) >= RoundDuration
}

// NewPlayer builds a member with default round state.
func NewPlayer(id, name, face string, now time.Time) Player {
	return Player{
		ID:          id,
		Name:        name,
		Face:        face,
		RoundStatus: RoundPlaying,
		LastSeen:    now,
		JoinedAt:    now,
	}
}
