package authgate

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	engine, _, mr := newTestEngine(t, testConfig())
	ctx := context.Background()

	signUp(t, engine, "alice@example.com")
	pair, err := engine.SignIn(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := engine.Refresh(ctx, pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrRefreshReuse) {
			fail++
			continue
		}
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d refresh failures, got %d", n-1, fail)
	}

	// Whatever the interleaving, at most one session key may remain.
	if keys := mr.Keys(); len(keys) > 1 {
		t.Fatalf("unexpected session keys %v", keys)
	}
}
