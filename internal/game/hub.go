package game

import (
	"encoding/json"
	"sync"
)

// Snapshot is one whole-document update pushed to watchers. Watchers always
// observe a complete, consistent session; partial writes are never visible.
type Snapshot struct {
	Kind     string   `json:"kind"`
	Session  *Session `json:"session,omitempty"`
	Watchers int      `json:"watchers"`
}

// Hub fans session snapshots out to subscribed watcher channels. One topic
// per session id; topics are created lazily and dropped when the last watcher
// leaves.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[chan []byte]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[chan []byte]struct{})}
}

// Watch subscribes a channel to a session's snapshot feed.
func (h *Hub) Watch(sessionID string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[sessionID]; !ok {
		h.topics[sessionID] = make(map[chan []byte]struct{})
	}
	h.topics[sessionID][ch] = struct{}{}
}

// Unwatch removes a watcher channel.
func (h *Hub) Unwatch(sessionID string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if watchers, ok := h.topics[sessionID]; ok {
		delete(watchers, ch)
		if len(watchers) == 0 {
			delete(h.topics, sessionID)
		}
	}
}

// Watchers returns the number of channels subscribed to a session.
func (h *Hub) Watchers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[sessionID])
}

// Broadcast pushes a full session snapshot to every watcher. Slow watchers
// are skipped rather than blocked on; they resync on the next change.
func (h *Hub) Broadcast(s *Session) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	watchers := h.topics[s.ID]
	if len(watchers) == 0 {
		return
	}
	data, err := json.Marshal(Snapshot{Kind: "state", Session: s, Watchers: len(watchers)})
	if err != nil {
		return
	}
	for ch := range watchers {
		select {
		case ch <- data:
		default:
		}
	}
}

// NotifyGone tells every watcher the session no longer exists. This is the
// not-found path of the subscription feed; clients navigate home on it.
func (h *Hub) NotifyGone(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	watchers := h.topics[sessionID]
	if len(watchers) == 0 {
		return
	}
	data, _ := json.Marshal(Snapshot{Kind: "gone"})
	for ch := range watchers {
		select {
		case ch <- data:
		default:
		}
	}
}
