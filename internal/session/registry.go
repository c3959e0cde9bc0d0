// Package session keeps the in-memory mapping of telegram id to active
// intake session. Sessions are deliberately not persisted: a restart loses
// them and the user starts over with /start.
package session

import (
	"sync"

	"w3bbot/internal/intake"
)

// Registry enforces the one-session-per-subject rule. Callers must not hold
// a session pointer across external calls for another subject's event; the
// dispatch layer serializes events per subject so a session is only ever
// touched by one event at a time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*intake.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*intake.Session)}
}

func (r *Registry) Get(telegramID int64) (*intake.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[telegramID]
	return s, ok
}

func (r *Registry) Put(telegramID int64, s *intake.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[telegramID] = s
}

// StartOrReplace installs a fresh session, reporting whether an older one
// was discarded so the caller can tell the user.
func (r *Registry) StartOrReplace(telegramID int64, s *intake.Session) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, replaced = r.sessions[telegramID]
	r.sessions[telegramID] = s
	return replaced
}

func (r *Registry) Remove(telegramID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, telegramID)
}
