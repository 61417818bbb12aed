package stats

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorExposesCounters(t *testing.T) {
	tracker := NewTracker(Options{})
	tracker.RecordReset(1)
	tracker.RecordInsert(true)
	tracker.RecordHit()

	collector := NewCollector("symtab", tracker)
	registry := prometheus.NewPedanticRegistry()
	if err := registry.Register(collector); err != nil {
		t.Fatalf("register collector: %v", err)
	}

	expected := `
# HELP symtab_symbols_entries Entries currently held, including the null symbol.
# TYPE symtab_symbols_entries gauge
symtab_symbols_entries 2
# HELP symtab_symbols_hits_total Intern calls answered by an existing entry.
# TYPE symtab_symbols_hits_total counter
symtab_symbols_hits_total 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "symtab_symbols_entries", "symtab_symbols_hits_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}

	if count := testutil.CollectAndCount(collector); count != 7 {
		t.Fatalf("expected 7 metrics, got %d", count)
	}
}
