package llm

import (
	"testing"
	"time"
)

func TestStatsSnapshotPercentiles(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.RecordLatency(100)
	stats.RecordLatency(200)
	stats.RecordLatency(300)
	stats.RecordLatency(400)
	stats.RecordLatency(500)

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewStats(10 * time.Millisecond)
	stats.RecordLatency(100)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.RecordLatency(200)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected single fresh sample of 200, got count=%d min=%d", snap.Count, snap.MinMs)
	}
}

func TestStatsFallbackCountsSurvivePruning(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.RecordFallback("impact")
	stats.RecordFallback("impact")
	stats.RecordFallback("quiz")

	snap := stats.Snapshot()
	if snap.DecodeFallbacks["impact"] != 2 {
		t.Errorf("expected 2 impact fallbacks, got %d", snap.DecodeFallbacks["impact"])
	}
	if snap.DecodeFallbacks["quiz"] != 1 {
		t.Errorf("expected 1 quiz fallback, got %d", snap.DecodeFallbacks["quiz"])
	}
}

func TestStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewStats(time.Hour)
	stats.RecordLatency(-10)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got count=%d min=%d max=%d", snap.Count, snap.MinMs, snap.MaxMs)
	}
}
