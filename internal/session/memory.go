package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore is an in-process session store. It backs development setups
// without Redis and the test suite.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		Now:      time.Now,
	}
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Create issues a fresh token for the user.
func (s *MemoryStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	now := s.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Opportunistic sweep of expired entries
	for t, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, t)
		}
	}

	s.sessions[token] = memoryEntry{userID: userID, expiresAt: now.Add(s.ttl)}
	return token, nil
}

// Resolve maps a token back to its user ID.
func (s *MemoryStore) Resolve(ctx context.Context, token string) (int64, error) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || s.Now().After(e.expiresAt) {
		return 0, ErrNoSession
	}
	return e.userID, nil
}

// Revoke deletes a token. Revoking an unknown token is a no-op.
func (s *MemoryStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
