package auth

import (
	"sync"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/models"
)

// SessionStore holds live login sessions, indexed by session ID and by user
// email. A token whose session is absent (logged out or expired) no longer
// authenticates.
type SessionStore struct {
	mu      sync.RWMutex
	byID    map[string]*models.Session
	byEmail map[string]map[string]struct{}
}

// NewSessionStore creates a new empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:    make(map[string]*models.Session),
		byEmail: make(map[string]map[string]struct{}),
	}
}

// Put stores a session.
func (s *SessionStore) Put(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[sess.ID] = sess
	ids, ok := s.byEmail[sess.Email]
	if !ok {
		ids = make(map[string]struct{})
		s.byEmail[sess.Email] = ids
	}
	ids[sess.ID] = struct{}{}
}

// Get retrieves a live session by ID.
func (s *SessionStore) Get(sessionID string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.byID[sessionID]
	if !ok || sess.IsExpired() {
		return nil, false
	}
	return sess, true
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(sessionID)
}

// Live returns the number of unexpired sessions held by email.
func (s *SessionStore) Live(email string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for id := range s.byEmail[email] {
		if !s.byID[id].IsExpired() {
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Cleanup removes expired sessions and returns how many it removed.
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, sess := range s.byID {
		if now.After(sess.ExpiresAt) {
			s.remove(id)
			removed++
		}
	}
	return removed
}

// remove must be called with mu held.
func (s *SessionStore) remove(id string) {
	sess, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if ids := s.byEmail[sess.Email]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byEmail, sess.Email)
		}
	}
}
