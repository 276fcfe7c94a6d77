// Package ratelimit provides the shared gate that bounds calls to the
// external text-generation service.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Gate admits at most maxPerWindow calls in any trailing window, evaluated
// at call time. It is the single point of cross-goroutine synchronization
// in the analysis pipeline: admission and timestamp bookkeeping happen
// atomically under one mutex, so concurrent callers cannot over-admit.
type Gate struct {
	mu           sync.Mutex
	admissions   []time.Time
	maxPerWindow int
	window       time.Duration
	now          func() time.Time
}

// NewGate creates a gate admitting maxPerWindow calls per window.
func NewGate(maxPerWindow int, window time.Duration) *Gate {
	if maxPerWindow <= 0 {
		maxPerWindow = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Gate{
		admissions:   make([]time.Time, 0, maxPerWindow),
		maxPerWindow: maxPerWindow,
		window:       window,
		now:          time.Now,
	}
}

// Acquire blocks until the caller may issue one external call, or until ctx
// is done. A cancelled wait never consumes an admission slot.
func (g *Gate) Acquire(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := g.now()
		g.pruneLocked(now)

		if len(g.admissions) < g.maxPerWindow {
			g.admissions = append(g.admissions, now)
			g.mu.Unlock()
			return nil
		}

		// Wait until the oldest admission ages out of the window.
		wait := g.admissions[0].Add(g.window).Sub(now)
		g.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// InFlight reports how many admissions are currently inside the window.
func (g *Gate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(g.now())
	return len(g.admissions)
}

// Limit returns the configured admissions per window.
func (g *Gate) Limit() int {
	return g.maxPerWindow
}

func (g *Gate) pruneLocked(now time.Time) {
	cutoff := now.Add(-g.window)
	idx := 0
	for idx < len(g.admissions) && !g.admissions[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		g.admissions = append(g.admissions[:0], g.admissions[idx:]...)
	}
}
