package symbol

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
)

// freshDefault empties the process-wide table so tests see predictable IDs.
func freshDefault(t *testing.T) *Table {
	t.Helper()
	tbl := Default()
	tbl.Clear()
	return tbl
}

// useDefault installs tbl as the process-wide table for the rest of the test.
func useDefault(t *testing.T, tbl *Table) {
	t.Helper()
	Default()
	defaultMu.Lock()
	saved := defaultTable
	defaultTable = tbl
	defaultMu.Unlock()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultTable = saved
		defaultMu.Unlock()
	})
}

func TestSymbolZeroValueIsNull(t *testing.T) {
	var s Symbol
	if !s.IsNull() || s.ID() != NullID || s.String() != "" {
		t.Fatalf("zero symbol should be null, got id %d text %q", s.ID(), s.String())
	}
	if New("") != s {
		t.Fatalf("empty text should yield the null symbol")
	}
}

func TestSymbolEquality(t *testing.T) {
	freshDefault(t)
	a := New("cutoff")
	b := FromBytes([]byte("cutoff"))
	if a != b {
		t.Fatalf("expected equal symbols, got %d and %d", a.ID(), b.ID())
	}
	if a == New("resonance") {
		t.Fatalf("distinct texts compared equal")
	}
	if a.String() != "cutoff" {
		t.Fatalf("unexpected text %q", a.String())
	}
}

func TestNewFallsBackToNull(t *testing.T) {
	tbl := freshDefault(t)
	before := tbl.SuppressedDiagnostics()
	if s := New("2nd"); !s.IsNull() {
		t.Fatalf("expected null symbol for invalid text, got %q", s.String())
	}
	if tbl.Len() != 1 {
		t.Fatalf("invalid text must not be stored")
	}
	if tbl.SuppressedDiagnostics() < before {
		t.Fatalf("suppressed count went backwards")
	}
}

func TestParse(t *testing.T) {
	freshDefault(t)
	if _, err := Parse("0dB"); !errors.Is(err, ErrLeadingDigit) {
		t.Fatalf("expected ErrLeadingDigit, got %v", err)
	}
	s, err := Parse("mix")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != New("mix") {
		t.Fatalf("Parse and New disagree")
	}
}

func TestSymbolOrdering(t *testing.T) {
	freshDefault(t)
	zeta := New("zeta")
	alpha := New("alpha")

	if !zeta.Less(alpha) {
		t.Fatalf("Less should follow creation order")
	}
	if !alpha.LessText(zeta) {
		t.Fatalf("LessText should follow text order")
	}

	symbols := []Symbol{zeta, alpha, New("mid")}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].LessText(symbols[j]) })
	if symbols[0] != alpha || symbols[2] != zeta {
		t.Fatalf("unexpected text order: %v", symbols)
	}

	if alpha.Compare("alpha") != 0 || alpha.Compare("beta") >= 0 || zeta.Compare("beta") <= 0 {
		t.Fatalf("Compare does not match text ordering")
	}
}

func TestSymbolAsMapKey(t *testing.T) {
	freshDefault(t)
	params := map[Symbol]float64{New("gain"): 0.5}
	params[New("gain")] = 0.75
	if len(params) != 1 || params[New("gain")] != 0.75 {
		t.Fatalf("unexpected map contents: %v", params)
	}
}

func TestSymbolTextEncoding(t *testing.T) {
	freshDefault(t)
	type patch struct {
		Target Symbol            `json:"target"`
		Values map[Symbol]string `json:"values"`
	}
	in := patch{Target: New("filter"), Values: map[Symbol]string{New("voice3"): "on"}}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"target":"filter","values":{"voice3":"on"}}` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var out patch
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out.Target != in.Target || out.Values[New("voice3")] != "on" {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	var bad Symbol
	if err := bad.UnmarshalText([]byte("9lives")); !errors.Is(err, ErrLeadingDigit) {
		t.Fatalf("expected ErrLeadingDigit, got %v", err)
	}
}

func TestConfigureAfterInitialization(t *testing.T) {
	Default()
	if err := Configure(Options{MaxTextLength: 8}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestConfigureBeforeInitialization(t *testing.T) {
	defaultMu.Lock()
	saved := defaultTable
	defaultTable = nil
	defaultOnce = sync.Once{}
	defaultMu.Unlock()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultTable = saved
		defaultOptions = Options{}
		defaultMu.Unlock()
	})

	if err := Configure(Options{MaxTextLength: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := New("voltage"); s.String() != "volt" {
		t.Fatalf("configured limit not applied, got %q", s.String())
	}
}
