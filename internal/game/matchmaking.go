package game

import (
	"context"

	"github.com/samber/lo"

	"github.com/n0ya6101/hangman-game/internal/logging"
)

// FindOrCreatePublicSession places a player into an open public lobby, or
// creates a fresh one when none is joinable. Matchmaking is a best-effort
// hint: two concurrent calls may pick the same session, and correctness then
// rests on Join's append-if-absent semantics, not on this function being
// race-free. Any failure on the search path falls back to creating a new
// session so the player is never blocked.
func (c *Controller) FindOrCreatePublicSession(ctx context.Context, p Player) (*Session, error) {
	sessions, err := c.store.FindOpenPublicSessions(ctx)
	if err != nil {
		logging.Warnf("matchmaking query failed: %v, creating a new public session", err)
		return c.Create(ctx, CreateConfig{Creator: p})
	}

	open := lo.Filter(sessions, func(s *Session, _ int) bool {
		return len(s.Players) < MaxPublicPlayers
	})
	if len(open) == 0 {
		return c.Create(ctx, CreateConfig{Creator: p})
	}
	s := open[0]

	// A lobby whose admin stopped heartbeating is stuck: nobody can start it.
	// Evict the stalled admin and hand their authority to the caller, in one
	// atomic write.
	if admin := s.Player(s.Admin); admin != nil && c.now().Sub(admin.LastSeen) > AdminIdleTimeout {
		patch := SessionPatch{
			Admin:        lo.ToPtr(p.ID),
			RemovePlayer: lo.ToPtr(admin.ID),
			LastActivity: lo.ToPtr(c.now()),
		}
		if err := c.store.UpdateSession(ctx, s.ID, patch); err != nil {
			logging.Warnf("evicting stalled admin %s from session %s: %v, creating a new public session",
				admin.ID, s.ID, err)
			return c.Create(ctx, CreateConfig{Creator: p})
		}
		logging.Infof("evicted stalled admin %s from session %s, promoting %s", admin.ID, s.ID, p.ID)
	}

	joined, err := c.Join(ctx, s.ID, p)
	if err != nil {
		logging.Warnf("joining matched session %s: %v, creating a new public session", s.ID, err)
		return c.Create(ctx, CreateConfig{Creator: p})
	}
	return joined, nil
}
