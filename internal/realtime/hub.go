// Package realtime tracks which users currently hold an open push session.
// The hub is pure runtime state: it is built empty at startup, filled by
// websocket connects, and is never the source of truth for anything.
// Notifications are persisted before delivery is even attempted.
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the write side of one live connection. *websocket.Conn
// satisfies it; tests use fakes.
type Session interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type entry struct {
	id   string
	sess Session
}

type Hub struct {
	mu       sync.RWMutex
	sessions map[string]entry // user id hex -> live session
	timeout  time.Duration
	log      *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]entry),
		timeout:  3 * time.Second,
		log:      log,
	}
}

// Register makes s the push target for userID and returns the session id.
// A second connection from the same user evicts the first as push target;
// the first connection stays open and keeps working for plain REST calls.
func (h *Hub) Register(userID string, s Session) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.sessions[userID] = entry{id: id, sess: s}
	h.mu.Unlock()
	h.log.Info("presence: session registered", "user_id", userID, "session_id", id)
	return id
}

// Unregister drops the session only if it is still the current one, so a
// stale connection closing late cannot evict its replacement.
func (h *Hub) Unregister(userID, sessionID string) {
	h.mu.Lock()
	if e, ok := h.sessions[userID]; ok && e.id == sessionID {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	_, ok := h.sessions[userID]
	h.mu.RUnlock()
	return ok
}

// Push writes v to the user's live session if one exists. Offline is the
// expected path and returns false quietly; a write error on a stale handle
// is logged and swallowed, the persisted record already holds the truth.
func (h *Hub) Push(userID string, v any) bool {
	h.mu.RLock()
	e, ok := h.sessions[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := e.sess.SetWriteDeadline(time.Now().Add(h.timeout)); err != nil {
		h.log.Warn("presence: set deadline failed", "user_id", userID, "err", err)
		return false
	}
	if err := e.sess.WriteJSON(v); err != nil {
		h.log.Warn("presence: push failed", "user_id", userID, "err", err)
		return false
	}
	return true
}

// Broadcast writes v to every tracked session. Used for system-wide
// announcements; individual write failures are logged, never returned.
func (h *Hub) Broadcast(v any) {
	h.mu.RLock()
	targets := make(map[string]entry, len(h.sessions))
	for uid, e := range h.sessions {
		targets[uid] = e
	}
	h.mu.RUnlock()

	for uid, e := range targets {
		if err := e.sess.SetWriteDeadline(time.Now().Add(h.timeout)); err != nil {
			continue
		}
		if err := e.sess.WriteJSON(v); err != nil {
			h.log.Warn("presence: broadcast write failed", "user_id", uid, "err", err)
		}
	}
}

// Online returns the number of tracked sessions.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
