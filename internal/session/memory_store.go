package session

import (
	"context"
	"sync"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

// MemoryStore implements Store with an in-process map. It is the fallback
// backend when no Redis is configured: sessions do not survive a restart and
// are not shared between replicas, but the contract is identical.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

// Get returns the stored session, or the idle zero session when none exists.
func (s *MemoryStore) Get(ctx context.Context, userID string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}
	return domain.NewIdleSession(userID), nil
}

// Put replaces the stored session for sess.UserID.
func (s *MemoryStore) Put(ctx context.Context, sess domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
	return nil
}

// Clear removes the stored session for userID.
func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// Ping always succeeds; the process is its own store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
