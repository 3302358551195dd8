package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore holds logged-in admin sessions in memory. Sessions do not
// survive a restart; editors simply log in again.
type SessionStore struct {
	sessions map[string]time.Time // token -> expiry
	ttl      time.Duration
	sync.RWMutex
}

// Global is the shared session store instance. TTL is applied in main
// from the configured value.
var Global = NewSessionStore(24 * time.Hour)

// NewSessionStore creates a store issuing sessions with the given lifetime.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]time.Time),
		ttl:      ttl,
	}
}

// SetTTL adjusts the lifetime applied to newly created sessions.
func (s *SessionStore) SetTTL(ttl time.Duration) {
	s.Lock()
	defer s.Unlock()
	if ttl > 0 {
		s.ttl = ttl
	}
}

// Create issues a new session token.
func (s *SessionStore) Create() string {
	token := uuid.NewString()
	s.Lock()
	defer s.Unlock()
	s.sessions[token] = time.Now().Add(s.ttl)
	return token
}

// Valid reports whether the token identifies a live session. Expired
// tokens are removed as they are seen.
func (s *SessionStore) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.RLock()
	expiry, exists := s.sessions[token]
	s.RUnlock()

	if !exists {
		return false
	}
	if time.Now().After(expiry) {
		s.Revoke(token)
		return false
	}
	return true
}

// Revoke removes a session if it exists.
func (s *SessionStore) Revoke(token string) bool {
	s.Lock()
	defer s.Unlock()
	_, exists := s.sessions[token]
	if exists {
		delete(s.sessions, token)
	}
	return exists
}

// Count returns the number of tracked sessions, including expired ones
// not yet touched.
func (s *SessionStore) Count() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.sessions)
}
