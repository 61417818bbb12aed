package stats

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/RowanDark/symtab/logging"
)

func TestTrackerSnapshot(t *testing.T) {
	tracker := NewTracker(Options{})
	tracker.RecordReset(1)
	tracker.RecordInsert(true)
	tracker.RecordInsert(false)
	tracker.RecordHit()
	tracker.RecordHit()
	tracker.RecordTruncation()
	tracker.RecordInvalid()

	snapshot := tracker.Snapshot()
	if snapshot.Entries != 3 || snapshot.Inserts != 2 || snapshot.Hits != 2 {
		t.Fatalf("unexpected snapshot values: %+v", snapshot)
	}
	if snapshot.Growths != 1 || snapshot.Truncations != 1 || snapshot.Invalid != 1 {
		t.Fatalf("unexpected diagnostic counters: %+v", snapshot)
	}
	if snapshot.HitRate() != 50 {
		t.Fatalf("expected 50%% hit rate, got %.1f", snapshot.HitRate())
	}
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker(Options{})
	tracker.RecordInsert(false)
	tracker.RecordInsert(false)
	tracker.RecordReset(1)
	if s := tracker.Snapshot(); s.Entries != 1 || s.Resets != 1 {
		t.Fatalf("unexpected snapshot after reset: %+v", s)
	}
}

func TestNilTracker(t *testing.T) {
	var tracker *Tracker
	tracker.RecordHit()
	tracker.RecordInsert(true)
	tracker.RecordReset(1)
	tracker.Start(nil)
	if tracker.Stop() != (Snapshot{}) {
		t.Fatalf("expected empty snapshot from nil tracker")
	}
}

func TestTrackerHitPathDoesNotAllocate(t *testing.T) {
	tracker := NewTracker(Options{})
	allocs := testing.AllocsPerRun(100, func() {
		tracker.RecordHit()
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations, got %.1f", allocs)
	}
}

func TestTrackerLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: logging.LevelInfo, Console: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Close()

	tracker := NewTracker(Options{Logger: logger, Interval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	tracker.Start(ctx.Done())
	tracker.RecordInsert(false)
	tracker.RecordHit()
	time.Sleep(5 * time.Millisecond)
	cancel()
	snapshot := tracker.Stop()

	if snapshot.Inserts == 0 {
		t.Fatalf("expected snapshot to reflect inserts")
	}
	if !strings.Contains(buf.String(), "Symbol table statistics") {
		t.Fatalf("expected final log output, got %s", buf.String())
	}
}

func TestRender(t *testing.T) {
	line := Render(Snapshot{Entries: 4, Hits: 3, Inserts: 1, Truncations: 2})
	for _, want := range []string{"entries=4", "lookups=4", "hit_rate=75.0%", "truncated=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "invalid=") {
		t.Fatalf("zero counters should be omitted: %q", line)
	}
}
