// Package session keeps the per-browser state of the dashboard: one
// dashboard view and one record list per session, identified by a signed
// token and dropped after a period of inactivity.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/dashboard"
	"github.com/skydeck/skydeck/internal/records"
)

// ErrSessionNotFound is returned for unknown or swept sessions.
var ErrSessionNotFound = errors.New("session not found")

// Session is the state owned by one browser.
type Session struct {
	ID        string
	CreatedAt time.Time
	Dashboard *dashboard.State
	Records   *records.Manager

	lastSeen atomic.Int64
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// RegistryConfig holds configuration for the session registry.
type RegistryConfig struct {
	// RecordStore backs every session's record manager.
	RecordStore records.Store

	// IdleTTL is how long an unused session is kept. Default: 2 hours.
	IdleTTL time.Duration

	Logger zerolog.Logger
}

// Registry holds live sessions in memory.
type Registry struct {
	store   records.Store
	idleTTL time.Duration
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	ttl := cfg.IdleTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{
		store:    cfg.RecordStore,
		idleTTL:  ttl,
		logger:   cfg.Logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with an empty dashboard and record list.
func (r *Registry) Create() *Session {
	now := r.now()
	id := uuid.New().String()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		Dashboard: dashboard.NewState(),
		Records:   records.NewManager(r.store, r.logger.With().Str("session_id", id).Logger()),
	}
	s.touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
