package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/n0ya6101/hangman-game/internal/game"
)

// MemStore is an in-memory game.SessionStore. It backs the server when no
// DATABASE_URL is configured and is the store used throughout the tests.
// Every read hands out a deep copy, so callers never alias stored state.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*game.Session
}

var _ game.SessionStore = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]*game.Session)}
}

func cloneSession(s *game.Session) *game.Session {
	out := *s
	out.Players = make([]game.Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p
		out.Players[i].Guesses = append([]string(nil), p.Guesses...)
	}
	if s.RoundStartTime != nil {
		t := *s.RoundStartTime
		out.RoundStartTime = &t
	}
	return &out
}

func (m *MemStore) GetSession(_ context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, game.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (m *MemStore) CreateSession(_ context.Context, s *game.Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.sessions[s.ID] = cloneSession(s)
	return s.ID, nil
}

func (m *MemStore) UpdateSession(_ context.Context, id string, patch game.SessionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return game.ErrSessionNotFound
	}
	if patch.Admin != nil {
		s.Admin = *patch.Admin
	}
	if patch.Word != nil {
		s.Word = *patch.Word
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.CurrentRound != nil {
		s.CurrentRound = *patch.CurrentRound
	}
	if patch.RoundStartTime != nil {
		t := *patch.RoundStartTime
		s.RoundStartTime = &t
	} else if patch.ClearRoundStart {
		s.RoundStartTime = nil
	}
	if patch.LastActivity != nil {
		s.LastActivity = *patch.LastActivity
	}
	for i := range s.Players {
		if patch.ResetRounds {
			s.Players[i].ResetRound()
		}
		if patch.ResetScores {
			s.Players[i].Score = 0
		}
	}
	if patch.RemovePlayer != nil {
		kept := s.Players[:0]
		for _, p := range s.Players {
			if p.ID != *patch.RemovePlayer {
				kept = append(kept, p)
			}
		}
		s.Players = kept
	}
	return nil
}

func (m *MemStore) SavePlayer(_ context.Context, sessionID string, p game.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return game.ErrSessionNotFound
	}
	p.Guesses = append([]string(nil), p.Guesses...)
	for i := range s.Players {
		if s.Players[i].ID == p.ID {
			s.Players[i] = p
			s.LastActivity = time.Now()
			return nil
		}
	}
	s.Players = append(s.Players, p)
	s.LastActivity = time.Now()
	return nil
}

func (m *MemStore) AddPlayer(_ context.Context, sessionID string, p game.Player) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return false, game.ErrSessionNotFound
	}
	for i := range s.Players {
		if s.Players[i].ID == p.ID {
			return false, nil
		}
	}
	p.Guesses = append([]string(nil), p.Guesses...)
	s.Players = append(s.Players, p)
	s.LastActivity = time.Now()
	return true, nil
}

func (m *MemStore) TouchPlayer(_ context.Context, sessionID, playerID string, seen time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return game.ErrSessionNotFound
	}
	for i := range s.Players {
		if s.Players[i].ID == playerID {
			s.Players[i].LastSeen = seen
			return nil
		}
	}
	return nil
}

func (m *MemStore) FindOpenPublicSessions(_ context.Context) ([]*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*game.Session
	for _, s := range m.sessions {
		if !s.IsPrivate && s.Status == game.StatusWaiting {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (m *MemStore) DeleteInactiveBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, s := range m.sessions {
		if s.LastActivity.Before(cutoff) {
			ids = append(ids, id)
			delete(m.sessions, id)
		}
	}
	return ids, nil
}
