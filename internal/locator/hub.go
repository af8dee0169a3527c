package locator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

// Hub owns the live locator sessions. Idle sessions expire after the TTL and
// the least recently used ones are evicted once the hub is full; either way
// the session is stopped.
type Hub struct {
	ctx      context.Context
	gateway  Gateway
	settings Settings
	opts     []Option
	logger   zerolog.Logger
	sessions *expirable.LRU[string, *Session]
}

// NewHub creates a hub. Sessions run until ctx is cancelled, they expire or
// the hub is closed.
func NewHub(ctx context.Context, gateway Gateway, settings Settings, maxSessions int, ttl time.Duration, logger zerolog.Logger, opts ...Option) *Hub {
	h := &Hub{
		ctx:      ctx,
		gateway:  gateway,
		settings: settings,
		opts:     opts,
		logger:   logger,
	}
	h.sessions = expirable.NewLRU[string, *Session](maxSessions, func(id string, s *Session) {
		h.logger.Debug().Str("locator_session", id).Msg("locator session evicted")
		s.Close()
	}, ttl)
	return h
}

// Create starts a new session in its opened state.
func (h *Hub) Create() *Session {
	id := uuid.New().String()
	opts := append([]Option{WithLogger(h.logger)}, h.opts...)
	s := NewSession(id, h.gateway, h.settings, opts...)
	go s.Run(h.ctx)
	h.sessions.Add(id, s)
	return s
}

// Get returns a live session and refreshes its expiry.
func (h *Hub) Get(id string) (*Session, bool) {
	s, ok := h.sessions.Get(id)
	if !ok {
		return nil, false
	}
	select {
	case <-s.Done():
		h.sessions.Remove(id)
		return nil, false
	default:
	}
	h.sessions.Add(id, s)
	return s, true
}

// Remove stops and forgets a session.
func (h *Hub) Remove(id string) bool {
	return h.sessions.Remove(id)
}

// Len is the number of tracked sessions.
func (h *Hub) Len() int {
	return h.sessions.Len()
}

// Close stops every session.
func (h *Hub) Close() {
	h.sessions.Purge()
}
