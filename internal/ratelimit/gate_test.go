package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGateAdmitsUpToLimitImmediately(t *testing.T) {
	g := NewGate(3, time.Minute)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("admissions under the limit should not block, took %v", elapsed)
	}
	if got := g.InFlight(); got != 3 {
		t.Fatalf("expected 3 admissions in window, got %d", got)
	}
}

func TestGateBlocksUntilOldestAgesOut(t *testing.T) {
	g := NewGate(2, 150*time.Millisecond)
	ctx := context.Background()

	if err := g.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := g.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := g.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("third acquire should have waited for the window, took %v", elapsed)
	}
}

func TestGateAcquireHonorsCancellation(t *testing.T) {
	g := NewGate(1, time.Minute)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := g.Acquire(ctx)
	if err == nil {
		t.Fatal("expected context error from blocked acquire")
	}
	if got := g.InFlight(); got != 1 {
		t.Fatalf("cancelled wait must not consume a slot, in-flight=%d", got)
	}
}

func TestGateNeverOverAdmitsUnderConcurrency(t *testing.T) {
	const limit = 5
	window := 200 * time.Millisecond
	g := NewGate(limit, window)

	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	ctx := context.Background()

	for i := 0; i < limit*3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(ctx); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	// No trailing window may contain more than limit admissions. The
	// check uses a slightly narrowed window to absorb scheduling jitter
	// between admission and timestamp recording.
	margin := 50 * time.Millisecond
	for i := range times {
		count := 0
		for j := range times {
			d := times[j].Sub(times[i])
			if d >= 0 && d < window-margin {
				count++
			}
		}
		if count > limit {
			t.Fatalf("window starting at admission %d holds %d admissions (limit %d)", i, count, limit)
		}
	}
}

func TestGateDefaultsOnBadConfig(t *testing.T) {
	g := NewGate(0, 0)
	if g.Limit() != 1 {
		t.Errorf("expected limit fallback 1, got %d", g.Limit())
	}
	if err := g.Acquire(context.Background()); err != nil {
		t.Errorf("acquire with defaults: %v", err)
	}
}
