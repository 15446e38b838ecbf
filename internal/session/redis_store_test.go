package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore_BadURL(t *testing.T) {
	if _, err := NewRedisStore("not-a-url"); err == nil {
		t.Fatalf("expected error for malformed redis url")
	}
}

func TestRedisStore_GetAbsentReturnsIdle(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	sess, err := store.Get(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess.State != domain.StateIdle {
		t.Errorf("expected idle state, got %q", sess.State)
	}
	if !sess.Fields.Empty() {
		t.Errorf("expected empty fields for unseen user")
	}
}

func TestRedisStore_PutGetClear(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	sess := domain.NewIdleSession("user-123")
	sess.State = domain.StateWaitAge
	sess.Fields.FirstName = "Ali"
	sess.CreatedAt = time.Now().UTC()

	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "user-123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != domain.StateWaitAge {
		t.Errorf("expected state %q, got %q", domain.StateWaitAge, got.State)
	}
	if got.Fields.FirstName != "Ali" {
		t.Errorf("expected first name Ali, got %q", got.Fields.FirstName)
	}

	if err := store.Clear(ctx, "user-123"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	got, err = store.Get(ctx, "user-123")
	if err != nil {
		t.Fatalf("Get after clear failed: %v", err)
	}
	if got.State != domain.StateIdle {
		t.Errorf("expected idle after clear, got %q", got.State)
	}
}

func TestRedisStore_PutReplacesWholeSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	first := domain.NewIdleSession("u1")
	first.State = domain.StateWaitFatherName
	first.Fields.FirstName = "A"
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// A restarted intake writes a fresh session; no stale fields may survive.
	second := domain.NewIdleSession("u1")
	second.State = domain.StateWaitFirstName
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Fields.FirstName != "" {
		t.Errorf("expected stale field discarded, got %q", got.Fields.FirstName)
	}
	if got.State != domain.StateWaitFirstName {
		t.Errorf("expected state waiting_first_name, got %q", got.State)
	}
}

func TestRedisStore_SessionHasTTL(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	sess := domain.NewIdleSession("u1")
	sess.State = domain.StateWaitPlace
	if err := store.Put(context.Background(), sess); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ttl := s.TTL("session:u1"); ttl <= 0 {
		t.Errorf("expected a positive TTL on the session key, got %v", ttl)
	}
}

func TestRedisStore_UnreachableServerSurfacesError(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()

	s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := store.Get(ctx, "u1"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
	if err := store.Put(ctx, domain.NewIdleSession("u1")); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
