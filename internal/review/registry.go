package review

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no active session exists for the
// generation, or it belongs to another user. The two cases are deliberately
// indistinguishable to callers.
var ErrSessionNotFound = errors.New("review session not found")

// Registry holds the active review sessions, keyed by generation ID. A
// generation has at most one session; starting a new one replaces any
// previous session for the same generation.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*Session)}
}

// Put registers a session under its generation ID.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	r.sessions[s.GenerationID()] = s
	r.mu.Unlock()
}

// Get returns the session for generationID, scoped to its owner.
func (r *Registry) Get(generationID int64, userID uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[generationID]
	r.mu.RUnlock()
	if !ok || s.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove discards the session for generationID, if any. Called when the
// user abandons a review.
func (r *Registry) Remove(generationID int64, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[generationID]; ok && s.UserID() == userID {
		delete(r.sessions, generationID)
	}
}
