package filters

import (
	"testing"

	"github.com/RowanDark/symtab/symbol"
)

func TestMatchesScope(t *testing.T) {
	tests := []struct {
		text     string
		patterns []string
		want     bool
	}{
		{text: "voice3", patterns: nil, want: true},
		{text: "voice3", patterns: []string{"voice*"}, want: true},
		{text: "Voice3", patterns: []string{"voice?"}, want: true},
		{text: "osc1.freq", patterns: []string{".freq"}, want: true},
		{text: "osc1.gain", patterns: []string{".freq"}, want: false},
		{text: "filter_cutoff", patterns: []string{"cut"}, want: true},
		{text: "gain", patterns: []string{"", "  "}, want: false},
		{text: "", patterns: []string{"*"}, want: false},
		{text: "pan", patterns: []string{"[", "pa*"}, want: true},
	}
	for _, tt := range tests {
		if got := MatchesScope(tt.text, tt.patterns); got != tt.want {
			t.Fatalf("MatchesScope(%q, %q): expected %v, got %v", tt.text, tt.patterns, tt.want, got)
		}
	}
}

func TestFilterEntries(t *testing.T) {
	entries := []symbol.Entry{
		{ID: 0, Text: ""},
		{ID: 1, Text: "voice1"},
		{ID: 2, Text: "gain"},
		{ID: 3, Text: "voice2"},
	}

	all := FilterEntries(entries, nil)
	if len(all) != 3 || all[0].ID != 1 {
		t.Fatalf("expected null entry dropped, got %+v", all)
	}

	voices := FilterEntries(entries, []string{"voice*"})
	if len(voices) != 2 || voices[0].ID != 1 || voices[1].ID != 3 {
		t.Fatalf("unexpected filtered entries: %+v", voices)
	}
}

func TestNearMisses(t *testing.T) {
	texts := []string{"resonance", "resonanse", "cutoff", "cutof", "voice1", "voice2", "gain", "gain", ""}

	misses := NearMisses(texts, 1)
	if len(misses) != 2 {
		t.Fatalf("expected 2 near misses, got %+v", misses)
	}
	if misses[0] != (NearMiss{A: "cutof", B: "cutoff", Distance: 1}) {
		t.Fatalf("unexpected first near miss: %+v", misses[0])
	}
	if misses[1] != (NearMiss{A: "resonance", B: "resonanse", Distance: 1}) {
		t.Fatalf("unexpected second near miss: %+v", misses[1])
	}
}

func TestNearMissesNumberedFamily(t *testing.T) {
	if misses := NearMisses([]string{"osc1", "osc2", "osc"}, 1); len(misses) != 2 {
		t.Fatalf("expected only pairs with the bare stem, got %+v", misses)
	}
}

func TestNearMissesDisabled(t *testing.T) {
	if misses := NearMisses([]string{"a", "b"}, 0); misses != nil {
		t.Fatalf("expected no near misses with distance 0, got %+v", misses)
	}
}
