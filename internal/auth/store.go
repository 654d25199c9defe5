package auth

import (
	"strings"
	"sync"

	"github.com/bobmcallan/finplan-portal/internal/models"
)

// CredentialStore holds registered accounts keyed by lowercased email.
type CredentialStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewCredentialStore creates a new empty CredentialStore.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{users: make(map[string]*models.User)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Add stores user unless the email is taken. Returns false when taken.
func (s *CredentialStore) Add(user *models.User) bool {
	key := normalizeEmail(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[key]; exists {
		return false
	}
	s.users[key] = user
	return true
}

// Get retrieves a user by email.
func (s *CredentialStore) Get(email string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[normalizeEmail(email)]
	return u, ok
}

// Delete removes the account for email.
func (s *CredentialStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, normalizeEmail(email))
}

// Len returns the number of registered users.
func (s *CredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
