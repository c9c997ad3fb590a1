package service

import (
	"sync"

	"github.com/google/uuid"

	"parkinglot/backend/services/parking-service/internal/models"
)

// TokenTable maps opaque bearer tokens to identities. It lives in process memory only and starts
// empty, so every token is invalidated by a restart.
type TokenTable struct {
	mu       sync.RWMutex
	sessions map[string]models.Identity
	newToken func() string
}

// NewTokenTable returns an empty table issuing random UUID tokens.
func NewTokenTable() *TokenTable {
	return &TokenTable{
		sessions: make(map[string]models.Identity),
		newToken: uuid.NewString,
	}
}

// Issue creates a token for identity.
func (t *TokenTable) Issue(identity models.Identity) string {
	token := t.newToken()
	t.Add(token, identity)
	return token
}

// Add registers a caller-chosen token.
func (t *TokenTable) Add(token string, identity models.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[token] = identity
}

// Lookup resolves token.
func (t *TokenTable) Lookup(token string) (models.Identity, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	identity, ok := t.sessions[token]
	return identity, ok
}

// Revoke removes token and reports whether it existed.
func (t *TokenTable) Revoke(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[token]; !ok {
		return false
	}
	delete(t.sessions, token)
	return true
}

// Len returns number of active tokens.
func (t *TokenTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
