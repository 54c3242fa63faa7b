package authgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMetricsCountEngineOutcomes(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	signUp(t, engine, "alice@example.com")
	if _, err := engine.SignUp(ctx, SignUpRequest{Name: "B", Email: "alice@example.com", Password: "another-password-456"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	pair, err := engine.SignIn(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if _, err := engine.SignIn(ctx, "alice@example.com", "wrong-password-123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := engine.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrRefreshReuse) {
		t.Fatalf("expected ErrRefreshReuse, got %v", err)
	}

	snap := engine.MetricsSnapshot()

	want := map[MetricID]uint64{
		MetricSignUpSuccess:        1,
		MetricSignUpConflict:       1,
		MetricSignInSuccess:        1,
		MetricSignInFailure:        1,
		MetricRefreshSuccess:       1,
		MetricRefreshReuseDetected: 1,
		MetricSessionCreated:       1,
		MetricSessionInvalidated:   1,
	}
	for id, expected := range want {
		if got := snap.Counters[id]; got != expected {
			t.Errorf("counter %d = %d, want %d", id, got, expected)
		}
	}
}

func TestMetricsDisabledSnapshotIsEmpty(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	signUp(t, engine, "alice@example.com")

	snap := engine.MetricsSnapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot with metrics disabled, got %v", snap.Counters)
	}
}

func TestAuthorizeLatencyHistogram(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	signUp(t, engine, "alice@example.com")
	pair, err := engine.SignIn(ctx, "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := engine.Authorize(ctx, pair.AccessToken); err != nil {
			t.Fatalf("authorize failed: %v", err)
		}
	}

	snap := engine.MetricsSnapshot()
	buckets := snap.Histograms[MetricAuthorizeLatency]
	if len(buckets) == 0 {
		t.Fatal("expected authorize latency buckets")
	}

	var total uint64
	for _, b := range buckets {
		total += b
	}
	if total != 3 {
		t.Fatalf("histogram total = %d, want 3", total)
	}
}

func TestNewMetricsObserveIgnoresCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	// Only the authorize-latency metric carries a histogram.
	m.Observe(MetricSignInSuccess, 10*time.Millisecond)
	m.Observe(MetricAuthorizeLatency, 10*time.Millisecond)

	snap := m.Snapshot()
	var total uint64
	for _, b := range snap.Histograms[MetricAuthorizeLatency] {
		total += b
	}
	if total != 1 {
		t.Fatalf("histogram total = %d, want 1", total)
	}
}
