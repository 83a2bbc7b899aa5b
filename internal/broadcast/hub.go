// Package broadcast fans state-change events out to connected dashboard
// sessions. Delivery is best-effort: there is no replay for late joiners,
// and a session that cannot keep up loses events instead of blocking the
// publisher or its peers.
package broadcast

import (
	"sync"

	"github.com/google/uuid"

	"github.com/calderonm/spinqueue/internal/constants"
	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/logger"
)

// Session is one connected dashboard client. Events arrive on C in the
// order they were published; the transport layer drains C and writes to
// the wire until Done is closed.
type Session struct {
	ID   string
	C    chan domain.Event
	done chan struct{}
}

// Done is closed when the session has been unsubscribed. C itself is never
// closed, so a publish that snapshotted this session can still complete
// its non-blocking send safely.
func (s *Session) Done() <-chan struct{} { return s.done }

type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
		logger:   log.WithComponent("broadcast"),
	}
}

// Subscribe registers a new session. Events published before the call are
// never delivered to it.
func (h *Hub) Subscribe() *Session {
	s := &Session{
		ID:   uuid.New().String(),
		C:    make(chan domain.Event, constants.SessionBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	h.logger.Info("DJ connected", "session_id", s.ID)
	return s
}

// Unsubscribe removes the session. Safe to call concurrently with Publish
// and idempotent.
func (h *Hub) Unsubscribe(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s.ID]
	delete(h.sessions, s.ID)
	h.mu.Unlock()

	if ok {
		close(s.done)
		h.logger.Info("DJ disconnected", "session_id", s.ID)
	}
}

// Publish delivers ev to every currently-subscribed session without
// blocking: a full session buffer drops the event for that session only.
// Zero subscribers is not an error.
func (h *Hub) Publish(ev domain.Event) {
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		select {
		case s.C <- ev:
		default:
			h.logger.Warn("slow session, event dropped", "session_id", s.ID, "action", ev.Action)
		}
	}
}

// Count returns the number of connected sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
