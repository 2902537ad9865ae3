package game

import (
	"context"
	"time"

	"github.com/n0ya6101/hangman-game/internal/logging"
)

// Reaper deletes sessions that have been inactive past the reclamation
// threshold. Deletion is unconditional on status: a finished session ages out
// the same way a stalled lobby does. There is no soft delete.
type Reaper struct {
	store SessionStore
	hub   *Hub
	now   func() time.Time
}

// NewReaper wires a reaper to the store and hub.
func NewReaper(store SessionStore, hub *Hub) *Reaper {
	return &Reaper{store: store, hub: hub, now: time.Now}
}

// Sweep deletes every session whose last activity is older than ReclaimAfter
// and notifies any remaining watchers that their session is gone. Returns the
// number of sessions reclaimed.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-ReclaimAfter)
	ids, err := r.store.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		r.hub.NotifyGone(id)
	}
	if len(ids) > 0 {
		logging.Infof("reclaimed %d inactive sessions", len(ids))
	}
	return len(ids), nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (r *Reaper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				logging.Warnf("reclamation sweep failed: %v", err)
			}
		}
	}
}
