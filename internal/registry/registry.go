// Package registry holds the pool of established bot sessions keyed by
// network identity.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/depotworks/tradedepot/internal/session"
)

// ErrNotFound marks a lookup for an identity with no session
var ErrNotFound = errors.New("session not found")

// Entry is the listing view of one registered session
type Entry struct {
	Identity    string `json:"steam_id"`
	DisplayName string `json:"account_name"`
}

// SessionRegistry is a concurrency-safe session pool. First
// registration per identity wins; later ones are rejected.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*session.Session),
	}
}

// Register adds a session. Returns ErrDuplicateIdentity when the
// identity is already present, leaving the original untouched.
func (r *SessionRegistry) Register(s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.Identity]; exists {
		return fmt.Errorf("%w: %s", session.ErrDuplicateIdentity, s.Identity)
	}
	r.sessions[s.Identity] = s
	return nil
}

// Lookup returns the session for an identity
func (r *SessionRegistry) Lookup(identity string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[identity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identity)
	}
	return s, nil
}

// List returns all registered sessions ordered by identity
func (r *SessionRegistry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.sessions))
	for _, s := range r.sessions {
		entries = append(entries, Entry{Identity: s.Identity, DisplayName: s.DisplayName})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Identity < entries[j].Identity
	})
	return entries
}

// Len returns the number of registered sessions
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
