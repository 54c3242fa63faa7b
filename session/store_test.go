package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, "user-", 0), mr
}

func TestInsertThenValidate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-1", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Validate(ctx, "42", "rtid-1"); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestValidateMismatchFails(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-1", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Validate(ctx, "42", "rtid-2"); !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected ErrTokenIDMismatch, got %v", err)
	}
}

func TestValidateAbsentKeyFails(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Validate(context.Background(), "42", "rtid-1"); !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected ErrTokenIDMismatch for absent key, got %v", err)
	}
}

func TestInsertOverwritesPriorSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-a", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Insert(ctx, "42", "rtid-b", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := store.Validate(ctx, "42", "rtid-a"); !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected superseded id to fail, got %v", err)
	}
	if err := store.Validate(ctx, "42", "rtid-b"); err != nil {
		t.Fatalf("expected current id to validate, got %v", err)
	}
}

func TestInvalidateThenValidateFails(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-1", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Invalidate(ctx, "42"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if err := store.Validate(ctx, "42", "rtid-1"); !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected ErrTokenIDMismatch after invalidate, got %v", err)
	}
}

func TestInvalidateAbsentKeyIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Invalidate(context.Background(), "nobody"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRotateSwapsActiveID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-1", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Rotate(ctx, "42", "rtid-1", "rtid-2", time.Hour); err != nil {
		t.Fatalf("rotate failed: %v", err)
	}

	if err := store.Validate(ctx, "42", "rtid-2"); err != nil {
		t.Fatalf("expected rotated id to validate, got %v", err)
	}
	if err := store.Validate(ctx, "42", "rtid-1"); !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected old id to fail, got %v", err)
	}
}

func TestRotateAbsentKeyFails(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Rotate(context.Background(), "42", "rtid-1", "rtid-2", time.Hour)
	if !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected ErrTokenIDMismatch, got %v", err)
	}
}

func TestRotateMismatchRevokesSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-2", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Stale id: the session existed but under a different active id.
	err := store.Rotate(ctx, "42", "rtid-1", "rtid-3", time.Hour)
	if !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected ErrTokenIDMismatch, got %v", err)
	}

	// Containment: the live session was revoked, so even the previously
	// active id no longer validates.
	if err := store.Validate(ctx, "42", "rtid-2"); !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected revoked session, got %v", err)
	}
}

func TestRotateSecondAttemptWithOldIDFails(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-1", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.Rotate(ctx, "42", "rtid-1", "rtid-2", time.Hour); err != nil {
		t.Fatalf("first rotate failed: %v", err)
	}

	err := store.Rotate(ctx, "42", "rtid-1", "rtid-3", time.Hour)
	if !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected replayed rotate to fail, got %v", err)
	}
}

func TestRotateConcurrencySingleWinner(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-1", time.Hour); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		next := nextTestID(i)
		go func() {
			defer wg.Done()
			results <- store.Rotate(ctx, "42", "rtid-1", next, time.Hour)
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrTokenIDMismatch) {
			t.Fatalf("unexpected rotate error: %v", err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one rotation winner, got %d", success)
	}
}

func TestStoreUnavailableSurfaces(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mr.Close()

	if err := store.Insert(ctx, "42", "rtid-1", time.Hour); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Validate(ctx, "42", "rtid-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Rotate(ctx, "42", "rtid-1", "rtid-2", time.Hour); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.Ping(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestInsertHonorsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "42", "rtid-1", time.Minute); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := store.Validate(ctx, "42", "rtid-1"); !errors.Is(err, ErrTokenIDMismatch) {
		t.Fatalf("expected expired session to fail validation, got %v", err)
	}
}

func nextTestID(i int) string {
	return "rtid-next-" + string(rune('a'+i))
}
