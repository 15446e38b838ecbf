// Package session provides storage backends for per-user intake sessions.
//
// Two interchangeable implementations exist behind the Store interface: a
// Redis-backed store for deployments with durable shared state, and an
// in-process memory store used as a fallback for development or when no
// Redis is configured. Callers must never branch on which backend they got;
// the orchestration layer selects one at startup from configuration.
package session

import (
	"context"
	"time"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

// Store persists at most one Session per user id.
//
// Get never fails on absence: a user the store has never seen yields the
// idle zero session. Put replaces the whole session atomically; there are no
// partial field updates. All methods honor the context for cancellation and
// deadlines, and return an error when the backing store is unreachable.
type Store interface {
	// Get returns the user's session, or an idle zero session if absent.
	Get(ctx context.Context, userID string) (domain.Session, error)
	// Put replaces the user's session.
	Put(ctx context.Context, s domain.Session) error
	// Clear removes the user's session. Clearing an absent session is a no-op.
	Clear(ctx context.Context, userID string) error
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// sessionTTL bounds how long an abandoned half-finished intake lingers.
const sessionTTL = 24 * time.Hour
