package stats

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RowanDark/symtab/logging"
)

type Options struct {
	Logger   *logging.Logger
	Interval time.Duration
}

// Tracker counts symbol table events. Every Record method is a single atomic
// operation so it can sit on the intern hit path without allocating.
type Tracker struct {
	hits        atomic.Uint64
	inserts     atomic.Uint64
	truncations atomic.Uint64
	invalid     atomic.Uint64
	growths     atomic.Uint64
	resets      atomic.Uint64
	entries     atomic.Int64

	mu    sync.RWMutex
	start time.Time

	logger   *logging.Logger
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

type Snapshot struct {
	Hits        uint64
	Inserts     uint64
	Truncations uint64
	Invalid     uint64
	Growths     uint64
	Resets      uint64
	Entries     int
	Duration    time.Duration
}

func NewTracker(opts Options) *Tracker {
	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Tracker{
		logger:   opts.Logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (t *Tracker) Start(ctxDone <-chan struct{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.start = time.Now()
	t.mu.Unlock()

	if t.logger == nil {
		return
	}

	t.ticker = time.NewTicker(t.interval)
	t.exited = make(chan struct{})
	go func() {
		defer close(t.exited)
		for {
			select {
			case <-t.ticker.C:
				t.logSnapshot(false)
			case <-ctxDone:
				return
			case <-t.done:
				return
			}
		}
	}()
}

// Stop halts periodic logging and logs and returns the final statistics.
func (t *Tracker) Stop() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.stopOnce.Do(func() {
		close(t.done)
		if t.ticker != nil {
			t.ticker.Stop()
			<-t.exited
		}
		t.logSnapshot(true)
	})
	return t.Snapshot()
}

// RecordHit counts a lookup that found an existing entry.
func (t *Tracker) RecordHit() {
	if t == nil {
		return
	}
	t.hits.Add(1)
}

// RecordInsert counts a new canonical entry; grew reports whether storage
// had to allocate a new chunk for it.
func (t *Tracker) RecordInsert(grew bool) {
	if t == nil {
		return
	}
	t.inserts.Add(1)
	t.entries.Add(1)
	if grew {
		t.growths.Add(1)
	}
}

func (t *Tracker) RecordTruncation() {
	if t == nil {
		return
	}
	t.truncations.Add(1)
}

func (t *Tracker) RecordInvalid() {
	if t == nil {
		return
	}
	t.invalid.Add(1)
}

// SetEntries overwrites the entry gauge, for a freshly seeded table.
func (t *Tracker) SetEntries(entries int) {
	if t == nil {
		return
	}
	t.entries.Store(int64(entries))
}

// RecordReset notes that the table was cleared down to entries entries.
func (t *Tracker) RecordReset(entries int) {
	if t == nil {
		return
	}
	t.resets.Add(1)
	t.entries.Store(int64(entries))
}

func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mu.RLock()
	start := t.start
	t.mu.RUnlock()
	duration := time.Duration(0)
	if !start.IsZero() {
		duration = time.Since(start)
	}
	return Snapshot{
		Hits:        t.hits.Load(),
		Inserts:     t.inserts.Load(),
		Truncations: t.truncations.Load(),
		Invalid:     t.invalid.Load(),
		Growths:     t.growths.Load(),
		Resets:      t.resets.Load(),
		Entries:     int(t.entries.Load()),
		Duration:    duration,
	}
}

// Lookups returns the number of intern calls that reached the index.
func (s Snapshot) Lookups() uint64 {
	return s.Hits + s.Inserts
}

// HitRate is the percentage of lookups served without inserting.
func (s Snapshot) HitRate() float64 {
	if s.Lookups() == 0 {
		return 0
	}
	return (float64(s.Hits) / float64(s.Lookups())) * 100
}

func (t *Tracker) logSnapshot(final bool) {
	if t == nil || t.logger == nil {
		return
	}
	snapshot := t.Snapshot()
	if final {
		t.logger.Infof("Symbol table statistics: %s", Render(snapshot))
		return
	}
	t.logger.Infof("Stats update: %s", Render(snapshot))
}

// Render formats a snapshot as a single log line.
func Render(s Snapshot) string {
	parts := []string{
		fmt.Sprintf("entries=%d", s.Entries),
		fmt.Sprintf("lookups=%d", s.Lookups()),
		fmt.Sprintf("hit_rate=%.1f%%", s.HitRate()),
		fmt.Sprintf("chunks_grown=%d", s.Growths),
	}
	if s.Truncations > 0 {
		parts = append(parts, fmt.Sprintf("truncated=%d", s.Truncations))
	}
	if s.Invalid > 0 {
		parts = append(parts, fmt.Sprintf("invalid=%d", s.Invalid))
	}
	if s.Duration > 0 {
		parts = append(parts, fmt.Sprintf("duration=%s", s.Duration.Truncate(time.Millisecond)))
	}
	return strings.Join(parts, " | ")
}
