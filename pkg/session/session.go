// Package session holds the in-memory bearer-token sessions that gate the
// API. Sessions live only in process memory; a restart logs everyone out.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/levenlabs/go-lflag"
)

// Store is a process-scoped session store guarded by a mutex. A token is
// valid iff now is before its expiry; expired tokens are purged lazily on
// Verify.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]time.Time

	// now is overridable for tests
	now func() time.Time
}

// New returns an empty Store issuing tokens valid for ttl.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Configured returns a Store with its TTL registered as a flag.
func Configured() *Store {
	s := New(0)
	ttl := lflag.Duration("session-ttl", 24*time.Hour, "How long a login session stays valid")
	lflag.Do(func() {
		s.ttl = *ttl
	})
	return s
}

// Create issues a new opaque session token. Expired entries are swept first
// so the map cannot grow without bound.
func (s *Store) Create() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, expiry := range s.sessions {
		if !now.Before(expiry) {
			delete(s.sessions, token)
		}
	}

	token := uuid.NewString()
	expiry := now.Add(s.ttl)
	s.sessions[token] = expiry
	return token, expiry
}

// Verify reports whether the token exists and is unexpired. An expired token
// is removed as a side effect.
func (s *Store) Verify(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if !s.now().Before(expiry) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// Delete removes one session. Deleting an unknown token is a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Clear removes every session, forcing a re-login everywhere.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]time.Time)
}

// Len returns the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
