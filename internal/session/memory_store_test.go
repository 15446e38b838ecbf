package session

import (
	"context"
	"sync"
	"testing"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

func TestMemoryStore_GetAbsentReturnsIdle(t *testing.T) {
	store := NewMemoryStore()
	sess, err := store.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess.State != domain.StateIdle || !sess.Fields.Empty() {
		t.Fatalf("expected idle zero session, got %+v", sess)
	}
}

func TestMemoryStore_PutGetClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := domain.NewIdleSession("u1")
	sess.State = domain.StateWaitPhoto
	sess.Fields.Place = "Tartus"

	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != domain.StateWaitPhoto || got.Fields.Place != "Tartus" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	got, _ = store.Get(ctx, "u1")
	if got.State != domain.StateIdle {
		t.Fatalf("expected idle after clear, got %q", got.State)
	}

	// Clearing again is a no-op.
	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear of absent session failed: %v", err)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Get(ctx, "u1"); err == nil {
		t.Fatalf("expected context error from Get")
	}
	if err := store.Put(ctx, domain.NewIdleSession("u1")); err == nil {
		t.Fatalf("expected context error from Put")
	}
	if err := store.Ping(ctx); err == nil {
		t.Fatalf("expected context error from Ping")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess := domain.NewIdleSession("shared")
			sess.State = domain.StateWaitFirstName
			_ = store.Put(ctx, sess)
			_, _ = store.Get(ctx, "shared")
		}(i)
	}
	wg.Wait()

	got, err := store.Get(ctx, "shared")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != domain.StateWaitFirstName {
		t.Fatalf("expected last write visible, got %q", got.State)
	}
}
